package msgspec

import (
	"strconv"
	"strings"
)

// ParseMessage parses the text of a single .msg file belonging to pkg.
// name is the message's own name (the file's basename without extension);
// it is not read from the text itself.
func ParseMessage(pkg, name, text string) (*MessageSpec, error) {
	return parseMessageBody(pkg, name, text, "")
}

// ParseService parses the text of a single .srv file belonging to pkg.
// name is the service's own name (the file's basename without extension).
func ParseService(pkg, name, text string) (*ServiceSpec, error) {
	reqText, respText, err := splitService(text)
	if err != nil {
		return nil, err
	}

	req, err := parseMessageBody(pkg, name+"Request", reqText, "")
	if err != nil {
		return nil, err
	}
	resp, err := parseMessageBody(pkg, name+"Response", respText, "")
	if err != nil {
		return nil, err
	}

	return &ServiceSpec{
		Package:  pkg,
		Name:     name,
		Request:  req,
		Response: resp,
	}, nil
}

// splitService divides .srv text on the line whose first non-whitespace
// content is "---", returning the request body and the response body.
func splitService(text string) (string, string, error) {
	lines := strings.Split(text, "\n")
	sepIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			sepIdx = i
			break
		}
	}
	if sepIdx == -1 {
		return "", "", &ParseError{Line: len(lines), Reason: "missing '---' service separator"}
	}
	return strings.Join(lines[:sepIdx], "\n"), strings.Join(lines[sepIdx+1:], "\n"), nil
}

// parseMessageBody parses the field/constant lines of one message body.
// file is the originating path for error messages, or "" when parsing
// in-memory text.
func parseMessageBody(pkg, name, text, file string) (*MessageSpec, error) {
	spec := &MessageSpec{
		Package:    pkg,
		Name:       name,
		SourceText: text,
	}

	seenFields := make(map[string]bool)
	lines := strings.Split(text, "\n")

	for i, raw := range lines {
		lineNo := i + 1
		code, unterminatedQuote := stripComment(raw)
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}

		eqIdx := indexUnquoted(code, '=')
		if eqIdx >= 0 {
			constant, err := parseConstantLine(code[:eqIdx], code[eqIdx+1:], unterminatedQuote, file, lineNo)
			if err != nil {
				return nil, err
			}
			spec.Constants = append(spec.Constants, *constant)
			continue
		}

		if unterminatedQuote {
			return nil, &ParseError{File: file, Line: lineNo, Reason: "unterminated string constant"}
		}

		field, err := parseFieldLine(code, file, lineNo)
		if err != nil {
			return nil, err
		}
		if seenFields[field.Name] {
			return nil, &ParseError{File: file, Line: lineNo, Reason: "duplicate field name " + field.Name}
		}
		seenFields[field.Name] = true
		spec.Fields = append(spec.Fields, *field)
	}

	return spec, nil
}

// stripComment removes an unquoted trailing "# ..." comment from a line,
// tracking whether a quoted string was left open (never closed) up to the
// comment or end of line.
func stripComment(line string) (code string, unterminatedQuote bool) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '#':
			return line[:i], quote != 0
		}
	}
	return line, quote != 0
}

// indexUnquoted returns the index of the first occurrence of b outside any
// quoted substring, or -1 if none exists.
func indexUnquoted(s string, b byte) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
			continue
		}
		if c == b {
			return i
		}
	}
	return -1
}

func parseFieldLine(code, file string, lineNo int) (*Field, error) {
	toks := strings.Fields(code)
	if len(toks) != 2 {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "expected '<type> <name>', got " + strconv.Quote(code)}
	}
	typeTok, name := toks[0], toks[1]

	if !isValidIdent(name) {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "invalid field name " + strconv.Quote(name)}
	}

	base, arrayKind, arraySize, err := parseTypeToken(typeTok, file, lineNo)
	if err != nil {
		return nil, err
	}

	return &Field{
		Name:      name,
		Kind:      base,
		Array:     arrayKind,
		ArraySize: arraySize,
	}, nil
}

func parseConstantLine(typeAndName, literal string, unterminatedQuote bool, file string, lineNo int) (*Constant, error) {
	toks := strings.Fields(typeAndName)
	if len(toks) != 2 {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "expected '<type> <NAME> = <literal>', got " + strconv.Quote(typeAndName)}
	}
	typeTok, name := toks[0], toks[1]
	if !isValidIdent(name) {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "invalid constant name " + strconv.Quote(name)}
	}

	base, arrayKind, _, err := parseTypeToken(typeTok, file, lineNo)
	if err != nil {
		return nil, err
	}
	if arrayKind != ArrayNone {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "constants cannot be arrays"}
	}
	if base.IsMessage() {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "constants must be primitive, got " + base.String()}
	}

	literal = strings.TrimSpace(literal)
	if base.Primitive == String {
		if len(literal) < 2 || literal[0] != literal[len(literal)-1] || (literal[0] != '\'' && literal[0] != '"') {
			unterminatedQuote = true
		}
		if unterminatedQuote {
			return nil, &ParseError{File: file, Line: lineNo, Reason: "unterminated string constant"}
		}
	} else if unterminatedQuote {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "unterminated string constant"}
	}
	if literal == "" {
		return nil, &ParseError{File: file, Line: lineNo, Reason: "empty constant literal"}
	}

	return &Constant{
		Name:    name,
		Kind:    base.Primitive,
		Literal: literal,
	}, nil
}

// parseTypeToken splits a type token into its base type and array suffix.
// Accepted forms: "bool", "int32[]", "int32[4]", "pkg/Name", "pkg/Name[]",
// "Name[3]". Nested arrays ("int32[][]") and "[0]"/negative fixed sizes are
// rejected.
func parseTypeToken(tok, file string, lineNo int) (Type, ArrayKind, int, error) {
	base := tok
	arrayKind := ArrayNone
	arraySize := 0

	if idx := strings.IndexByte(tok, '['); idx >= 0 {
		if !strings.HasSuffix(tok, "]") {
			return Type{}, ArrayNone, 0, &ParseError{File: file, Line: lineNo, Reason: "malformed array suffix in " + strconv.Quote(tok)}
		}
		inner := tok[idx+1 : len(tok)-1]
		base = tok[:idx]

		if strings.ContainsAny(base, "[]") {
			return Type{}, ArrayNone, 0, &ParseError{File: file, Line: lineNo, Reason: "nested arrays are not valid: " + strconv.Quote(tok)}
		}

		if inner == "" {
			arrayKind = ArrayDynamic
		} else {
			n, err := strconv.Atoi(inner)
			if err != nil || n <= 0 {
				return Type{}, ArrayNone, 0, &ParseError{File: file, Line: lineNo, Reason: "invalid fixed array size in " + strconv.Quote(tok)}
			}
			arrayKind = ArrayFixed
			arraySize = n
		}
	}

	t, err := parseBaseType(base, file, lineNo)
	if err != nil {
		return Type{}, ArrayNone, 0, err
	}
	return t, arrayKind, arraySize, nil
}

func parseBaseType(base, file string, lineNo int) (Type, error) {
	if base == "" {
		return Type{}, &ParseError{File: file, Line: lineNo, Reason: "empty type"}
	}

	if base == "Header" {
		return Type{Package: "std_msgs", Name: "Header"}, nil
	}

	if p, ok := primitiveKinds[base]; ok {
		return Type{Primitive: p}, nil
	}

	if idx := strings.IndexByte(base, '/'); idx >= 0 {
		pkg, name := base[:idx], base[idx+1:]
		if pkg == "" || name == "" || !isValidIdent(name) {
			return Type{}, &ParseError{File: file, Line: lineNo, Reason: "malformed message reference " + strconv.Quote(base)}
		}
		return Type{Package: pkg, Name: name}, nil
	}

	if !isValidIdent(base) {
		return Type{}, &ParseError{File: file, Line: lineNo, Reason: "invalid type token " + strconv.Quote(base)}
	}

	// Bare Name: resolved against the enclosing package by the resolver,
	// once it knows what package this MessageSpec belongs to.
	return Type{Name: base}, nil
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if i == 0 && isDigit {
			return false
		}
		if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}
