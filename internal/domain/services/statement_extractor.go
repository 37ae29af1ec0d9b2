package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// copyrightPattern recognizes one copyright notice per line:
//
//	Copyright (c) 2019-2024 Jane Doe
//	Copyright 2019 The Go Authors. All rights reserved.
//	© 2020 Acme Inc.
//	(C) 2018, 2019 Example Corp
var copyrightPattern = regexp.MustCompile(
	`(?P<lead>(?i:copyright)(?:[ \t]*(?:\((?i:c)\)|©))*|©|\((?i:c)\))` +
		`[ \t]*(?P<years>\d{4}(?:[ \t]*[-–,][ \t]*(?:\d{4}|\d{2}|(?i:present)))*)?` +
		`[ \t]*[,.:]?[ \t]*(?P<rest>[^\r\n]*)`)

var (
	leadIndex  = copyrightPattern.SubexpIndex("lead")
	yearsIndex = copyrightPattern.SubexpIndex("years")
	restIndex  = copyrightPattern.SubexpIndex("rest")
)

// boilerplateWords follow "copyright" in license prose, not in notices
var boilerplateWords = map[string]bool{
	"holder":       true,
	"holders":      true,
	"owner":        true,
	"owners":       true,
	"notice":       true,
	"notices":      true,
	"law":          true,
	"laws":         true,
	"and":          true,
	"or":           true,
	"statement":    true,
	"license":      true,
	"licensed":     true,
	"protection":   true,
	"infringement": true,
	"permission":   true,
	"interest":     true,
}

// abbreviations keep their trailing period in holder names
var abbreviations = map[string]bool{
	"inc":  true,
	"ltd":  true,
	"co":   true,
	"corp": true,
	"llc":  true,
	"gmbh": true,
	"s.a":  true,
	"b.v":  true,
	"al":   true,
}

// ExtractStatements finds copyright statements and their holders in content.
// Each statement yields one span; a holder span, when present, lies inside it.
// Content without notices yields empty lists.
func ExtractStatements(content []byte) ([]entities.CopyrightStatement, []entities.Holder) {
	statements := make([]entities.CopyrightStatement, 0)
	holders := make([]entities.Holder, 0)
	if len(content) == 0 {
		return statements, holders
	}

	text := string(content)
	for _, loc := range copyrightPattern.FindAllStringSubmatchIndex(text, -1) {
		start := loc[0]
		hasYears := loc[2*yearsIndex] >= 0
		restStart, restEnd := loc[2*restIndex], loc[2*restIndex+1]
		lead := text[loc[2*leadIndex]:loc[2*leadIndex+1]]

		rest := trimNoticeTail(text[restStart:restEnd])
		restEnd = restStart + len(rest)

		if !hasYears && (isBareSymbol(lead) || !looksLikeHolder(rest)) {
			continue
		}

		end := restEnd
		if strings.TrimSpace(rest) == "" {
			end = loc[2*yearsIndex+1]
			if end < 0 {
				continue
			}
		}

		statements = append(statements, entities.CopyrightStatement{
			Value:      text[start:end],
			StartIndex: start,
			EndIndex:   end,
		})

		if hStart, hEnd, ok := holderSpan(rest); ok {
			holders = append(holders, entities.Holder{
				Value:      rest[hStart:hEnd],
				StartIndex: restStart + hStart,
				EndIndex:   restStart + hEnd,
			})
		}
	}

	return statements, holders
}

func isBareSymbol(lead string) bool {
	return !strings.HasPrefix(strings.ToLower(lead), "copyright")
}

// looksLikeHolder accepts "Jane Doe" or "by Jane Doe" but not "notice and ..."
func looksLikeHolder(rest string) bool {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(strings.ToLower(rest), "by ") {
		rest = strings.TrimSpace(rest[3:])
	}

	r, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(r) {
		return false
	}

	first := strings.FieldsFunc(rest, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(first) == 0 {
		return false
	}
	return !boilerplateWords[strings.ToLower(first[0])]
}

// holderSpan returns the holder name range inside rest
func holderSpan(rest string) (start, end int, ok bool) {
	end = len(rest)

	lower := strings.ToLower(rest)
	for _, stop := range []string{"all rights reserved", " <", "<", "http://", "https://", "(", "--"} {
		if i := strings.Index(lower, stop); i >= 0 && i < end {
			end = i
		}
	}

	start = 0
	for start < end && (rest[start] == ' ' || rest[start] == '\t') {
		start++
	}
	if strings.HasPrefix(strings.ToLower(rest[start:end]), "by ") {
		start += 3
	}

	for end > start && strings.ContainsRune(" \t,;:-", rune(rest[end-1])) {
		end--
	}
	if end > start && rest[end-1] == '.' && !endsWithAbbreviation(rest[start:end-1]) {
		end--
		for end > start && strings.ContainsRune(" \t,;:-", rune(rest[end-1])) {
			end--
		}
	}

	if end <= start {
		return 0, 0, false
	}
	if !strings.ContainsFunc(rest[start:end], unicode.IsLetter) {
		return 0, 0, false
	}
	return start, end, true
}

func endsWithAbbreviation(s string) bool {
	i := strings.LastIndexAny(s, " \t,")
	word := strings.ToLower(s[i+1:])
	return abbreviations[word]
}

// trimNoticeTail strips comment closers and trailing blanks
func trimNoticeTail(s string) string {
	for {
		trimmed := strings.TrimRight(s, " \t*;#")
		trimmed = strings.TrimSuffix(trimmed, "*/")
		trimmed = strings.TrimSuffix(trimmed, "-->")
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
