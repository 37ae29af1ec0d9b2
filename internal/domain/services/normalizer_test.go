package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Empty(t *testing.T) {
	doc := Normalize(nil)
	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.IDs())
	assert.Empty(t, doc.Bag())

	doc = Normalize([]byte("  \n\t-- ,;\n"))
	assert.Equal(t, 0, doc.Len())
}

func TestNormalize_TokensAndOffsets(t *testing.T) {
	content := []byte("Hello, World!\n  foo-BAR 42\n")
	doc := Normalize(content)

	require.Equal(t, 5, doc.Len())

	want := []struct {
		text string
		line int
	}{
		{"hello", 1},
		{"world", 1},
		{"foo", 2},
		{"bar", 2},
		{"42", 2},
	}
	for i, w := range want {
		tok := doc.Tokens[i]
		assert.Equal(t, w.text, tok.Text)
		assert.Equal(t, w.line, tok.Line)
		assert.Equal(t, w.text, strings.ToLower(string(content[tok.Start:tok.End])))
		assert.Equal(t, TokenID(w.text), tok.ID)
	}

	for i := 1; i < doc.Len(); i++ {
		assert.Greater(t, doc.Tokens[i].Start, doc.Tokens[i-1].Start, "positions must increase")
	}
}

func TestNormalize_Span(t *testing.T) {
	content := []byte("alpha beta\ngamma delta\n")
	doc := Normalize(content)

	startLine, endLine, start, end := doc.Span(1, 3)
	assert.Equal(t, 1, startLine)
	assert.Equal(t, 2, endLine)
	assert.Equal(t, "beta\ngamma", string(content[start:end]))
}

func TestNormalize_SpellingVariants(t *testing.T) {
	assert.Equal(t, NormalizeText("the Licence is licensed"), NormalizeText("the license is licenced"))
	assert.Equal(t, []string{"http", "example", "org"}, NormalizeText("https://example.org"))
}

func TestNormalize_UnicodeWords(t *testing.T) {
	content := []byte("Über straße")
	doc := Normalize(content)

	require.Equal(t, 2, doc.Len())
	assert.Equal(t, "über", doc.Tokens[0].Text)
	assert.Equal(t, "Über", string(content[doc.Tokens[0].Start:doc.Tokens[0].End]))
	assert.Equal(t, "straße", doc.Tokens[1].Text)
}

func TestNormalize_SkipsCopyrightLines(t *testing.T) {
	tests := []struct {
		name string
		line string
		skip bool
	}{
		{"copyright with symbol", "Copyright (c) 2024 Jane Doe", true},
		{"copyright with year", "Copyright 2019 The Go Authors. All rights reserved.", true},
		{"unicode symbol", "© 2020 Acme Inc.", true},
		{"go comment", "// Copyright 2021 Example Corp", true},
		{"c comment", " * Copyright (C) 2018 Someone", true},
		{"hash comment", "# copyright © 2017 Someone", true},
		{"bare c symbol", "(c) 2015 Someone", true},
		{"placeholder", "Copyright <YEAR> <COPYRIGHT HOLDER>", true},
		{"license prose", "copyright notice, this list of conditions and the following disclaimer.", false},
		{"holders prose", "AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM", false},
		{"plain text", "Permission is hereby granted", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Normalize([]byte(tt.line + "\nmarker\n"))
			if tt.skip {
				require.Equal(t, 1, doc.Len())
				assert.Equal(t, "marker", doc.Tokens[0].Text)
				assert.Equal(t, 2, doc.Tokens[0].Line)
			} else {
				assert.Greater(t, doc.Len(), 1)
			}
		})
	}
}

func TestNormalize_Bag(t *testing.T) {
	doc := Normalize([]byte("a b a c a"))
	bag := doc.Bag()
	assert.Equal(t, 3, bag[TokenID("a")])
	assert.Equal(t, 1, bag[TokenID("b")])
	assert.Equal(t, 1, bag[TokenID("c")])
}

