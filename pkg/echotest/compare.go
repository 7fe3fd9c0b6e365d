package echotest

import "go.linkcheck.dev/linkcheck/pkg/linkcheck"

// Compare returns a report of every position where received differs from sent,
// and whether the two are identical.
// When the lengths differ, positions past the end of the shorter slice are
// reported as missing or extra.
func Compare(sent, received []byte) (linkcheck.MismatchReport, bool) {
	n := len(sent)
	if len(received) > n {
		n = len(received)
	}
	rep := linkcheck.MismatchReport{Length: n}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(received):
			rep.Mismatches = append(rep.Mismatches, linkcheck.Mismatch{Index: i, Sent: sent[i], Missing: true})
		case i >= len(sent):
			rep.Mismatches = append(rep.Mismatches, linkcheck.Mismatch{Index: i, Received: received[i], Extra: true})
		case sent[i] != received[i]:
			rep.Mismatches = append(rep.Mismatches, linkcheck.Mismatch{Index: i, Sent: sent[i], Received: received[i]})
		}
	}
	return rep, len(rep.Mismatches) == 0
}
