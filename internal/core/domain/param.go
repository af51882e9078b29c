package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ParamKind selects how a Param is rendered on the Gradle command line.
type ParamKind int

const (
	// ParamFlag is a bare switch such as "--continue" or "-s". Key holds the full flag.
	ParamFlag ParamKind = iota
	// ParamProperty is a project property rendered as -Pkey=value.
	ParamProperty
	// ParamSystemProperty is a JVM system property rendered as -Dkey or -Dkey=value.
	ParamSystemProperty
	// ParamInitScript is an init script rendered as "-I <path>".
	ParamInitScript
)

// String returns a short label for the kind.
func (k ParamKind) String() string {
	switch k {
	case ParamProperty:
		return "property"
	case ParamSystemProperty:
		return "system-property"
	case ParamInitScript:
		return "init-script"
	default:
		return "flag"
	}
}

// Param is one structured command line parameter.
type Param struct {
	Kind  ParamKind
	Key   string
	Value string
}

// Flag creates a bare switch parameter.
func Flag(name string) Param {
	return Param{Kind: ParamFlag, Key: name}
}

// Property creates a -Pkey=value parameter.
func Property(key, value string) Param {
	return Param{Kind: ParamProperty, Key: key, Value: value}
}

// SystemProperty creates a -Dkey=value parameter. An empty value renders as -Dkey.
func SystemProperty(key, value string) Param {
	return Param{Kind: ParamSystemProperty, Key: key, Value: value}
}

// InitScript creates an "-I <path>" parameter.
func InitScript(path string) Param {
	return Param{Kind: ParamInitScript, Value: path}
}

// Args renders the parameter as command line arguments.
func (p Param) Args() []string {
	switch p.Kind {
	case ParamProperty:
		return []string{"-P" + p.Key + "=" + p.Value}
	case ParamSystemProperty:
		if p.Value == "" {
			return []string{"-D" + p.Key}
		}
		return []string{"-D" + p.Key + "=" + p.Value}
	case ParamInitScript:
		return []string{"-I", p.Value}
	default:
		return []string{p.Key}
	}
}

// ParamList is an ordered list of parameters.
// Order is significant: Gradle lets later flags override earlier ones, so duplicates are kept.
type ParamList []Param

// With returns a new list holding l followed by params. l is never modified.
func (l ParamList) With(params ...Param) ParamList {
	out := make(ParamList, 0, len(l)+len(params))
	out = append(out, l...)
	return append(out, params...)
}

// Concat returns a new list holding l followed by every list in others.
func (l ParamList) Concat(others ...ParamList) ParamList {
	n := len(l)
	for _, o := range others {
		n += len(o)
	}
	out := make(ParamList, 0, n)
	out = append(out, l...)
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

// Render returns the argv form of the list.
func (l ParamList) Render() []string {
	args := make([]string, 0, len(l))
	for _, p := range l {
		args = append(args, p.Args()...)
	}
	return args
}

// String returns the list as a single shell-quoted line.
func (l ParamList) String() string {
	return JoinArgs(l.Render())
}

// ParseParams converts tokenised command line arguments into a ParamList.
// Positional arguments are rejected: tasks are configured separately.
func ParseParams(args []string) (ParamList, error) {
	out := make(ParamList, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-I" || arg == "--init-script":
			if i+1 >= len(args) {
				return nil, zerr.With(zerr.Wrap(ErrConfiguration, "init script flag without a path"), "arg", arg)
			}
			i++
			out = append(out, InitScript(args[i]))
		case strings.HasPrefix(arg, "-P") && len(arg) > 2:
			key, value, _ := strings.Cut(arg[2:], "=")
			out = append(out, Property(key, value))
		case strings.HasPrefix(arg, "-D") && len(arg) > 2:
			key, value, _ := strings.Cut(arg[2:], "=")
			out = append(out, SystemProperty(key, value))
		case strings.HasPrefix(arg, "-"):
			out = append(out, Flag(arg))
		default:
			return nil, zerr.With(zerr.Wrap(ErrConfiguration, "unexpected positional argument"), "arg", arg)
		}
	}
	return out, nil
}

// QuoteStyle selects how a command line is quoted for the agent's shell.
type QuoteStyle int

const (
	// QuotePOSIX quotes for sh and bash.
	QuotePOSIX QuoteStyle = iota
	// QuoteCmd quotes for cmd.exe and programs that split arguments the MSVCRT way.
	QuoteCmd
)

// shellSpecial lists characters that force an argument to be quoted by sh.
// % is left alone so agent parameter references stay visible.
const shellSpecial = " \t\n\"'\\$`;&|<>()*?[]#~"

// cmdSpecial lists characters that force an argument to be quoted by cmd.exe.
const cmdSpecial = " \t\n\"&|<>^()"

// JoinArgs joins arguments into one POSIX shell line.
func JoinArgs(args []string) string {
	return QuotePOSIX.Join(args)
}

// Join joins arguments into one line, quoting those that need it.
func (q QuoteStyle) Join(args []string) string {
	quote := quotePOSIX
	if q == QuoteCmd {
		quote = quoteCmd
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quote(arg))
	}
	return b.String()
}

func quotePOSIX(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, shellSpecial) {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		if r == '"' || r == '\\' || r == '$' || r == '`' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// quoteCmd keeps backslashes literal except where they precede a quote,
// including the closing one, in which case they are doubled.
func quoteCmd(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, cmdSpecial) {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for _, r := range arg {
		switch r {
		case '\\':
			slashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes+1))
			slashes = 0
		default:
			slashes = 0
		}
		b.WriteRune(r)
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')
	return b.String()
}
