package config

import (
	"log"
	"strconv"
	"strings"
)

// ParseList splits listStr on any of the delimiter characters and parses
// every non-empty token as an unsigned number. Used for per-core latency and
// size lists.
func ParseList(listStr, delimiters string) []uint64 {
	var res []uint64

	for _, tok := range tokenize(listStr, delimiters) {
		v, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			log.Panicf("config: %s in list [%s] could not be parsed",
				tok, listStr)
		}
		res = append(res, v)
	}

	return res
}

// ParseStringList splits listStr on any of the delimiter characters,
// dropping empty tokens.
func ParseStringList(listStr, delimiters string) []string {
	return tokenize(listStr, delimiters)
}

// ParseMask parses a space-separated list of ranges ("0 4:8 16:32:2") into a
// bool mask of maskSize elements. Each range is "min", "min:sup", or
// "min:sup:step", covering [min, sup) in steps of step. Used for
// core-to-process assignment masks.
func ParseMask(maskStr string, maskSize int) []bool {
	mask := make([]bool, maskSize)

	for _, r := range tokenize(maskStr, " ") {
		min, sup, step := parseRange(r)

		for i := min; i < sup; i += step {
			if i >= maskSize {
				log.Panicf("config: range %s includes out-of-bounds %d (mask limit %d)",
					r, i, maskSize-1)
			}
			mask[i] = true
		}
	}

	return mask
}

// parseRange parses "min", "min:sup", or "min:sup:step".
func parseRange(r string) (min, sup, step int) {
	var n []int
	for _, tok := range tokenize(r, ":") {
		x, err := strconv.ParseUint(tok, 10, 31)
		if err != nil {
			log.Panicf("config: %s in range %s is not a valid number", tok, r)
		}
		n = append(n, int(x))
	}

	switch len(n) {
	case 1:
		min, sup, step = n[0], n[0]+1, 1
	case 2:
		min, sup, step = n[0], n[1], 1
	case 3:
		min, sup, step = n[0], n[1], n[2]
	default:
		log.Panicf("config: range %s can only have 1-3 numbers delimited by ':', %d parsed",
			r, len(n))
	}

	if step == 0 {
		log.Panicf("config: range %s has 0 step", r)
	}
	if min >= sup {
		log.Panicf("config: range %s has min >= sup", r)
	}

	return min, sup, step
}

// tokenize splits on any of the delimiter characters, dropping empty tokens.
func tokenize(s, delimiters string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})
}
