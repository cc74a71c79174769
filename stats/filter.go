package stats

import "regexp"

// Filter returns a pruned copy of the tree that keeps only the leaf stats
// whose full dot-separated path matches pattern. Kept leaves are shared with
// the original tree, so the filtered view stays live. Aggregates left with
// no matching descendants are dropped. The root itself is always returned,
// possibly empty.
func Filter(root *Aggregate, pattern string) (*Aggregate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return filterAgg(root, "", re), nil
}

func filterAgg(a *Aggregate, prefix string, re *regexp.Regexp) *Aggregate {
	out := &Aggregate{name: a.name, desc: a.desc, regular: false}

	for _, c := range a.children {
		path := c.Name()
		if prefix != "" {
			path = prefix + "." + c.Name()
		}

		if child, ok := c.(*Aggregate); ok {
			kept := filterAgg(child, path, re)
			if len(kept.children) > 0 {
				out.children = append(out.children, kept)
			}
			continue
		}

		if re.MatchString(path) {
			out.children = append(out.children, c)
		}
	}
	return out
}
