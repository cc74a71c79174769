package stats

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteText dumps the tree in the classic indented .out format:
//
//	root: # memsim stats
//	 cores: # per-core stats
//	  core-0: #
//	   cycles: 41 # completion cycle of the last access
func WriteText(w io.Writer, root *Aggregate) error {
	bw := bufio.NewWriter(w)
	writeTextStat(bw, root, 0)
	return bw.Flush()
}

func writeTextStat(w *bufio.Writer, s Stat, depth int) {
	indent := strings.Repeat(" ", depth)

	switch st := s.(type) {
	case *Aggregate:
		fmt.Fprintf(w, "%s%s: # %s\n", indent, st.Name(), st.Desc())
		for _, c := range st.Children() {
			writeTextStat(w, c, depth+1)
		}
	case Vector:
		fmt.Fprintf(w, "%s%s: # %s\n", indent, st.Name(), st.Desc())
		for i := 0; i < st.Size(); i++ {
			fmt.Fprintf(w, "%s %s: %d\n", indent, st.ElemName(i), st.At(i))
		}
	case Scalar:
		fmt.Fprintf(w, "%s%s: %d # %s\n", indent, st.Name(), st.Value(), st.Desc())
	}
}
