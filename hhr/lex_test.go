package hhr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		state parseState
		line  string
		want  lineKind
	}{
		{stateHeader, "Query         Only X amino acids", lineHeaderField},
		{stateHeader, "Match_columns 39", lineHeaderField},
		{stateHeader, "Searched_HMMs 34", lineHeaderField},
		{stateHeader, " No Hit                             Prob E-value", lineTableHeader},
		{stateHeader, "", lineBlank},
		{stateHeader, "   ", lineBlank},
		{stateHeader, "  1 1klr_A Zinc finger", lineUnknown},
		{stateTable, "  1 1klr_A Zinc finger   0.0 3.4E+04", lineTableRow},
		{stateTable, "100 1klr_A Zinc finger   0.0 3.4E+04", lineTableRow},
		{stateTable, "Query         2UVO:A", lineNewQuery},
		{stateTable, "Done!", lineEnd},
		{stateHits, "No 1", lineBlockStart},
		{stateHits, "No 12", lineBlockStart},
		{stateHits, "No Hit", lineUnknown},
		{stateBlock, "No 2", lineBlockStart},
		{stateBlock, ">1klr_A Zinc finger", lineBlockName},
		{stateBlock, "Probab=0.00  E-value=3.4e+04", lineBlockScores},
		{stateBlock, "Q ss_pred             C", lineQuery},
		{stateBlock, "Q Only X amino a   39 X   39 (39)", lineQuery},
		{stateBlock, "T 1klr_A           24 T   24 (30)", lineTemplate},
		{stateBlock, "Confidence            7", lineConfidence},
		{stateBlock, "                      +", lineMatch},
		{stateBlock, "                      |||  |", lineMatch},
		{stateBlock, "                      .-=~+|", lineMatch},
		{stateBlock, "   this is not an hhr line 123", lineUnknown},
		{stateBlock, "                      xyz!", lineUnknown},
		{stateBlock, "Query         Only X amino acids", lineNewQuery},
		{stateBlock, "Done!", lineEnd},
		{stateBlock, "Something else", lineUnknown},
		{stateDone, "", lineBlank},
		{stateDone, "Query         Only X amino acids", lineNewQuery},
		{stateDone, "No 1", lineUnknown},
	}
	for _, test := range tests {
		got := classify(test.state, test.line)
		assert.Equal(t, test.want, got, "%s: '%s'", test.state, test.line)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		state parseState
		kind  lineKind
		want  parseState
		ok    bool
	}{
		{stateHeader, lineHeaderField, stateHeader, true},
		{stateHeader, lineTableHeader, stateTable, true},
		{stateHeader, lineTableRow, 0, false},
		{stateTable, lineTableRow, stateTable, true},
		{stateTable, lineBlank, stateHits, true},
		{stateTable, lineBlockName, 0, false},
		{stateHits, lineBlockStart, stateBlock, true},
		{stateHits, lineTableRow, 0, false},
		{stateBlock, lineQuery, stateBlock, true},
		{stateBlock, lineBlockStart, stateBlock, true},
		{stateBlock, lineEnd, stateDone, true},
		{stateBlock, lineNewQuery, stateHeader, true},
		{stateTable, lineNewQuery, stateHeader, true},
		{stateHits, lineNewQuery, stateHeader, true},
		{stateDone, lineNewQuery, stateHeader, true},
		{stateHeader, lineNewQuery, 0, false},
		{stateDone, lineBlank, stateDone, true},
		{stateDone, lineBlockStart, 0, false},
	}
	for _, test := range tests {
		got, ok := transition(test.state, test.kind)
		assert.Equal(t, test.ok, ok, "%s after %s", test.kind, test.state)
		if test.ok {
			assert.Equal(t, test.want, got, "%s after %s", test.kind, test.state)
		}
	}

	// Unknown lines are never valid.
	for s := stateHeader; s <= stateDone; s++ {
		_, ok := transition(s, lineUnknown)
		assert.False(t, ok, s.String())
	}
}

func TestBlockNumber(t *testing.T) {
	n, err := blockNumber("No 10")
	assert.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = blockNumber("No ten")
	assert.ErrorIs(t, err, ErrUnrecognizedLine)
}

func TestSplitField(t *testing.T) {
	key, value := splitField("Command       hhsearch -i allx.a3m -d pdb70")
	assert.Equal(t, "Command", key)
	assert.Equal(t, "hhsearch -i allx.a3m -d pdb70", value)

	key, value = splitField("Date")
	assert.Equal(t, "Date", key)
	assert.Empty(t, value)
}
