package htable

import (
	"fmt"
	"strings"
)

// Dump renders every slot and its chain, one slot per line, for debugging.
// stringify formats values; nil uses fmt's %v.
//
//	[0] => (k="Host", v="localhost") => NULL
//	[1] => NULL
func (t *Table[V]) Dump(stringify func(V) string) string {
	var b strings.Builder
	for i, head := range t.slots {
		fmt.Fprintf(&b, "[%d]", i)
		for e := head; e != nil; e = e.next {
			var v string
			if stringify != nil {
				v = stringify(e.value)
			} else {
				v = fmt.Sprintf("%v", e.value)
			}
			fmt.Fprintf(&b, " => (k=%q, v=%q)", e.key, v)
		}
		b.WriteString(" => NULL\n")
	}
	return b.String()
}
