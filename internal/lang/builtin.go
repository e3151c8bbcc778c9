package lang

var (
	slashComments = []string{"//"}
	cBlock        = []BlockComment{{Start: "/*", End: "*/"}}
	nestedCBlock  = []BlockComment{{Start: "/*", End: "*/", Nestable: true}}

	dq         = StringDelim{Open: `"`}
	sq         = StringDelim{Open: `'`}
	dqMulti    = StringDelim{Open: `"`, Multiline: true}
	sqMulti    = StringDelim{Open: `'`, Multiline: true}
	sqRawMulti = StringDelim{Open: `'`, Raw: true, Multiline: true}
	charLit    = StringDelim{Open: `'`, MaxLen: 12}
	tripleDQ   = StringDelim{Open: `"""`, Multiline: true}
	tripleSQ   = StringDelim{Open: `'''`, Multiline: true}
	tripleRaw  = StringDelim{Open: `"""`, Raw: true, Multiline: true}
	backtick   = StringDelim{Open: "`", Multiline: true}
	rawTick    = StringDelim{Open: "`", Raw: true, Multiline: true}
)

func ruleC(name Language) Rule {
	return Rule{
		Name:             name,
		LineComments:     slashComments,
		BlockComments:    cBlock,
		Strings:          []StringDelim{dq, charLit},
		LineContinuation: true,
		Structural:       "{}",
	}
}

func ruleJS(name Language, jsx bool) Rule {
	r := Rule{
		Name:          name,
		LineComments:  slashComments,
		BlockComments: cBlock,
		Strings:       []StringDelim{dq, sq, backtick},
		Structural:    "{}",
	}
	if jsx {
		r.BlockComments = []BlockComment{{Start: "/*", End: "*/"}, {Start: "<!--", End: "-->"}}
	}
	return r
}

// pythonFStrings は f 文字列の区切りです。置換フィールドを含むので中身はコード扱い。
// rf"..." でも \" は文字列を閉じないので、エスケープは通常どおり解釈します。
func pythonFStrings() []StringDelim {
	var out []StringDelim
	for _, prefix := range []string{"f", "F", "rf", "rF", "Rf", "RF", "fr", "fR", "Fr", "FR"} {
		for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
			out = append(out, StringDelim{
				Open:      prefix + quote,
				Close:     quote,
				Multiline: len(quote) == 3,
				Code:      true,
			})
		}
	}
	return out
}

func builtinRules() []Rule {
	cpp := ruleC(CPP)
	cpp.RawStrings = []RawString{{
		Prefixes: []string{`R"`, `LR"`, `uR"`, `UR"`, `u8R"`},
		Key:      KeyIdent,
		Open:     "(",
		Close:    ")",
		Suffix:   `"`,
	}}

	perlPOD := make([]BlockComment, 0, 8)
	for _, start := range []string{"=pod", "=head1", "=head2", "=head3", "=begin", "=item", "=over", "=encoding"} {
		perlPOD = append(perlPOD, BlockComment{Start: start, End: "=cut", LineStart: true})
	}

	return []Rule{
		ruleC(C),
		cpp,
		ruleC(ObjectiveC),
		{
			Name:          Java,
			LineComments:  slashComments,
			BlockComments: cBlock,
			Strings:       []StringDelim{tripleDQ, dq, charLit},
			Structural:    "{}",
		},
		{
			Name:          CSharp,
			LineComments:  slashComments,
			BlockComments: cBlock,
			Strings: []StringDelim{
				tripleRaw,
				{Open: `@"`, Close: `"`, Raw: true, Multiline: true},
				dq,
				charLit,
			},
			Structural: "{}",
		},
		{
			Name:          Kotlin,
			LineComments:  slashComments,
			BlockComments: nestedCBlock,
			Strings:       []StringDelim{tripleRaw, dq, charLit},
			Structural:    "{}",
		},
		{
			Name:          Scala,
			LineComments:  slashComments,
			BlockComments: nestedCBlock,
			Strings:       []StringDelim{tripleRaw, dq, charLit},
			Structural:    "{}",
		},
		{
			Name:          Swift,
			LineComments:  slashComments,
			BlockComments: nestedCBlock,
			Strings:       []StringDelim{tripleDQ, dq},
			Structural:    "{}",
		},
		{
			Name:          Go,
			LineComments:  slashComments,
			BlockComments: cBlock,
			Strings:       []StringDelim{dq, charLit, rawTick},
			Structural:    "{}",
		},
		{
			Name:          Rust,
			LineComments:  slashComments,
			BlockComments: nestedCBlock,
			Strings:       []StringDelim{dqMulti, charLit},
			RawStrings: []RawString{{
				Prefixes: []string{"r", "br", "cr"},
				Key:      KeyHashes,
				Open:     `"`,
				Close:    `"`,
			}},
			Structural: "{}()",
		},
		{
			Name:          Dart,
			LineComments:  slashComments,
			BlockComments: nestedCBlock,
			Strings:       []StringDelim{tripleDQ, tripleSQ, dq, sq},
			Structural:    "{}",
		},
		ruleJS(JavaScript, false),
		ruleJS(JavaScriptReact, true),
		ruleJS(TypeScript, false),
		ruleJS(TypeScriptReact, true),
		{
			Name:         Python,
			LineComments: []string{"#"},
			Strings:      append(pythonFStrings(), tripleDQ, tripleSQ, dq, sq),
		},
		{
			Name:          Ruby,
			LineComments:  []string{"#"},
			BlockComments: []BlockComment{{Start: "=begin", End: "=end", LineStart: true}},
			Strings:       []StringDelim{dqMulti, sqMulti, backtick},
		},
		{
			Name:         Shell,
			LineComments: []string{"#"},
			Strings:      []StringDelim{dqMulti, sqRawMulti, backtick},
		},
		{
			Name:          Perl,
			LineComments:  []string{"#"},
			BlockComments: perlPOD,
			Strings:       []StringDelim{dqMulti, sqMulti},
		},
		{
			Name:          SQL,
			LineComments:  []string{"--"},
			BlockComments: cBlock,
			Strings:       []StringDelim{sqRawMulti, {Open: `"`, Raw: true, Multiline: true}},
		},
		{
			Name:          Haskell,
			LineComments:  []string{"--"},
			BlockComments: []BlockComment{{Start: "{-", End: "-}", Nestable: true}},
			Strings:       []StringDelim{dq, charLit},
		},
		{
			Name:          Lua,
			LineComments:  []string{"--"},
			BlockComments: []BlockComment{{Start: "--[[", End: "]]"}},
			Strings:       []StringDelim{dq, sq},
			RawStrings: []RawString{{
				Prefixes: []string{"["},
				Key:      KeyEquals,
				Open:     "[",
				Close:    "]",
				Suffix:   "]",
			}},
		},
		{
			Name:          HTML,
			BlockComments: []BlockComment{{Start: "<!--", End: "-->"}},
		},
		{
			Name:          XML,
			BlockComments: []BlockComment{{Start: "<!--", End: "-->"}},
		},
		{
			Name:          CSS,
			BlockComments: cBlock,
			Strings:       []StringDelim{dq, sq},
			Structural:    "{}",
		},
		{
			Name:         TOML,
			LineComments: []string{"#"},
			Strings: []StringDelim{
				tripleDQ,
				{Open: `'''`, Raw: true, Multiline: true},
				dq,
				{Open: `'`, Raw: true},
			},
		},
		{
			Name:         YAML,
			LineComments: []string{"#"},
			Strings:      []StringDelim{dq, {Open: `'`, Raw: true}},
		},
	}
}
