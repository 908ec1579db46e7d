package diffview

// Op tags a run of tokens in the alignment.
type Op int

// Alignment operations.
const (
	OpUnchanged Op = iota
	OpRemoved
	OpAdded
)

// Run is a maximal sequence of consecutive tokens sharing one operation.
type Run struct {
	Op     Op
	Tokens []Token
}

// Text returns the run's tokens joined back into text.
func (r Run) Text() string {
	var n int
	for _, t := range r.Tokens {
		n += len(t.Text)
	}
	out := make([]byte, 0, n)
	for _, t := range r.Tokens {
		out = append(out, t.Text...)
	}
	return string(out)
}

// Diff aligns two token sequences using a longest-common-subsequence
// table and returns runs tagged unchanged, removed or added. Removed
// tokens precede added tokens at each divergence point.
func Diff(oldTokens, newTokens []Token) []Run {
	n, m := len(oldTokens), len(newTokens)

	// lcs[i][j] is the LCS length of oldTokens[i:] and newTokens[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldTokens[i].Text == newTokens[j].Text {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var runs []Run
	appendToken := func(op Op, tok Token) {
		if len(runs) > 0 && runs[len(runs)-1].Op == op {
			last := &runs[len(runs)-1]
			last.Tokens = append(last.Tokens, tok)
			return
		}
		runs = append(runs, Run{Op: op, Tokens: []Token{tok}})
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case oldTokens[i].Text == newTokens[j].Text:
			appendToken(OpUnchanged, newTokens[j])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			appendToken(OpRemoved, oldTokens[i])
			i++
		default:
			appendToken(OpAdded, newTokens[j])
			j++
		}
	}
	for ; i < n; i++ {
		appendToken(OpRemoved, oldTokens[i])
	}
	for ; j < m; j++ {
		appendToken(OpAdded, newTokens[j])
	}

	return runs
}
