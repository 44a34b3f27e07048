package hhr

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleRead() {
	r := getFile("allx.hhr")
	defer r.Close()

	qr, err := Read(r)
	if err != nil {
		log.Fatalf("%s", err)
	}

	fmt.Println(qr.ID)
	fmt.Println(qr.SeqLen)
	fmt.Println(qr.Len())

	hit := qr.Hits[0]
	hsp := hit.HSPs[0]
	fmt.Println(hit.ID)
	fmt.Println(hit.EValue)
	fmt.Println(hit.Score)
	fmt.Println(hsp.QueryStart, hsp.QueryEnd)
	fmt.Println(hsp.HitStart, hsp.HitEnd)
	fmt.Printf("%s\n", hsp.Query.Residues)
	fmt.Printf("%s\n", hsp.Hit.Residues)
	// Output:
	// Only X amino acids
	// 39
	// 10
	// 1klr_A_1
	// 34000
	// -0.01
	// 39 39
	// 24 24
	// X
	// T
}

func getFile(name string) *os.File {
	r, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		log.Fatalf("%s", err)
	}
	return r
}

func readFile(t *testing.T, name string) *QueryResult {
	t.Helper()
	r := getFile(name)
	defer r.Close()

	qr, err := Read(r)
	require.NoError(t, err)
	return qr
}

func TestReadAllX(t *testing.T) {
	qr := readFile(t, "allx.hhr")

	assert.Equal(t, Program, qr.Program)
	assert.Equal(t, "Only X amino acids", qr.ID)
	assert.Equal(t, 39, qr.SeqLen)
	assert.Equal(t, "1 out of 1", qr.Meta.NumSeqs)
	assert.EqualValues(t, 1, qr.Meta.Neff)
	assert.Equal(t, 34, qr.Meta.SearchedHMMs)
	assert.Equal(t, "Mon Dec 10 13:50:29 2018", qr.Meta.Date)
	assert.Equal(t, "hhsearch -i allx.a3m -d pdb70 -o allx.hhr", qr.Meta.Command)
	require.Len(t, qr.Summary, 10)
	require.Equal(t, 10, qr.Len())

	first := qr.Hits[0]
	assert.Equal(t, "1klr_A_1", first.ID)
	assert.Equal(t, "1klr_A", first.Name)
	assert.Equal(t, 1, first.Num)
	assert.Equal(t, "Zinc finger Y-chromosomal protein; transcription; NMR "+
		"{Synthetic} SCOP: g.37.1.1 PDB: 5znf_A 1kls_A 1xrz_A* 7znf_A",
		first.Description)
	assert.True(t, first.IsIncluded)
	assert.Equal(t, 34000.0, first.EValue)
	assert.Equal(t, -0.01, first.Score)
	require.Len(t, first.HSPs, 1)

	hsp := first.HSPs[0]
	assert.True(t, hsp.IsIncluded)
	assert.Equal(t, 24, hsp.HitStart)
	assert.Equal(t, 24, hsp.HitEnd)
	assert.Equal(t, 30, hsp.HitLen)
	assert.Equal(t, 39, hsp.QueryStart)
	assert.Equal(t, 39, hsp.QueryEnd)
	assert.Equal(t, 39, hsp.QueryLen)
	assert.Equal(t, "T", string(hsp.Hit.Residues))
	assert.Equal(t, "X", string(hsp.Query.Residues))
	assert.Equal(t, "1klr_A", hsp.Hit.Name)
	assert.Equal(t, "Only X amino acids", hsp.Query.Name)
	assert.Equal(t, 1, hsp.NumAlignedCols)
	assert.Equal(t, -0.349, hsp.Similarity)
	assert.Equal(t, "7", hsp.Confidence())
	assert.Equal(t, "C", hsp.Annotations["Q ss_pred"])
	assert.Equal(t, "+", hsp.Annotations[AnnotationMatch])

	// The table rounds what the block prints in full.
	assert.Equal(t, "Zinc finger Y-chromosom", qr.Summary[0].Description)
	assert.Equal(t, -0.0, qr.Summary[0].Score)

	last := qr.Hits[9]
	assert.Equal(t, "1zfd_A_1", last.ID)
	assert.Equal(t, 10, last.Num)
	assert.Equal(t, "SWI5; DNA binding motif, zinc finger DNA binding domain; "+
		"NMR {Saccharomyces cerevisiae} SCOP: g.37.1.1", last.Description)
	assert.Equal(t, 36000.0, last.EValue)
	assert.Equal(t, 0.03, last.Score)
	assert.Equal(t, 1, last.HSPs[0].HitStart)
	assert.Equal(t, 1, last.HSPs[0].HitEnd)
	assert.Equal(t, 4, last.HSPs[0].QueryStart)
	assert.Equal(t, 4, last.HSPs[0].QueryEnd)
	assert.Equal(t, "D", string(last.HSPs[0].Hit.Residues))
	assert.Equal(t, "X", string(last.HSPs[0].Query.Residues))
}

func TestReadRepeats(t *testing.T) {
	qr := readFile(t, "2uvo_repeats.hhr")

	assert.Equal(t, "2UVO:A|PDBID|CHAIN|SEQUENCE", qr.ID)
	assert.Equal(t, 171, qr.SeqLen)
	assert.Equal(t, "148 out of 1620", qr.Meta.NumSeqs)
	assert.InDelta(t, 2.94338, float64(qr.Meta.Neff), 1e-9)

	// Five rows in the table, but only four alignments were printed.
	require.Len(t, qr.Summary, 5)
	require.Equal(t, 4, qr.Len())
	assert.Equal(t, "1ulk_A", qr.Summary[4].Name)

	ids := make([]string, qr.Len())
	for i, hit := range qr.Hits {
		ids[i] = hit.ID
	}
	assert.Equal(t, []string{"2uvo_A_1", "1wga_1", "4mpi_A_1", "1wga_2"}, ids)

	hit, ok := qr.Hit("1wga_2")
	require.True(t, ok)
	assert.Equal(t, 4, hit.Num)
	assert.Equal(t, "lectin (agglutinin); NMR {}", hit.Description)
	assert.Equal(t, 2.6, hit.EValue)
	assert.Equal(t, 25.90, hit.Score)
	assert.InDelta(t, 0.62, hit.Prob, 1e-9)

	_, ok = qr.Hit("1wga_3")
	assert.False(t, ok)

	// The first alignment wraps over three chunks.
	full := qr.Hits[0].HSPs[0]
	assert.Equal(t, 1, full.QueryStart)
	assert.Equal(t, 171, full.QueryEnd)
	assert.Equal(t, 1, full.HitStart)
	assert.Equal(t, 171, full.HitEnd)
	assert.Len(t, full.Query.Residues, 171)
	assert.Equal(t, full.Query.Residues, full.Hit.Residues)
	assert.Equal(t, 3.7e-34, full.EValue)
	assert.Equal(t, 210.31, full.Score)
	assert.InDelta(t, 1.0, full.Prob, 1e-9)
	assert.InDelta(t, 1.0, full.Identity, 1e-9)
	assert.Equal(t, 169.8, full.SumProbs)
	assert.Equal(t, 2.010, full.TemplateNeff)
	assert.Equal(t, 171, full.NumAlignedCols)
	assert.True(t, strings.HasPrefix(string(full.Query.Residues), "ERCGEQGSNM"))
	assert.True(t, strings.HasSuffix(string(full.Query.Residues), "GAGCQSGGCDG"))

	for _, label := range []string{
		"Q ss_pred", "Q Consensus", AnnotationMatch, "T Consensus",
		"T ss_dssp", "T ss_pred", AnnotationConfidence,
	} {
		assert.Len(t, full.Annotations[label], 171, label)
	}
	assert.True(t, strings.HasPrefix(full.Annotations["T Consensus"], "ercgeq"))

	gapped := qr.Hits[2].HSPs[0]
	assert.Equal(t, "4mpi_A", gapped.Hit.Name)
	assert.Equal(t, 88, gapped.QueryStart)
	assert.Equal(t, 129, gapped.QueryEnd)
	assert.Equal(t, 2, gapped.HitStart)
	assert.Equal(t, 41, gapped.HitEnd)
	assert.Equal(t, 243, gapped.HitLen)

	for _, hit := range qr.Hits {
		for _, hsp := range hit.HSPs {
			assert.Equal(t, len(hsp.Query.Residues), len(hsp.Hit.Residues))
			assert.Equal(t, hsp.QueryEnd-hsp.QueryStart+1,
				countResidues([]byte(string(hsp.Query.Residues))), hit.ID)
			assert.Equal(t, hsp.HitEnd-hsp.HitStart+1,
				countResidues([]byte(string(hsp.Hit.Residues))), hit.ID)
		}
	}
}

func TestReadIncomplete(t *testing.T) {
	for _, name := range []string{
		"2uvo_onlyheader.hhr",
		"2uvo_emptytable.hhr",
	} {
		t.Run(name, func(t *testing.T) {
			r := getFile(name)
			defer r.Close()

			_, err := Read(r)
			require.ErrorIs(t, err, ErrIncompleteReport)
		})
	}
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("\n\n"))
	require.Equal(t, io.EOF, err)
}

func TestReadIdempotent(t *testing.T) {
	for _, name := range []string{"allx.hhr", "2uvo_repeats.hhr"} {
		require.Equal(t, readFile(t, name), readFile(t, name), name)
	}
}

func TestReadMultipleQueries(t *testing.T) {
	a, b := getFile("2uvo_repeats.hhr"), getFile("allx.hhr")
	defer a.Close()
	defer b.Close()

	rdr := NewReader(io.MultiReader(a, b))
	all, err := rdr.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2UVO:A|PDBID|CHAIN|SEQUENCE", all[0].ID)
	assert.Equal(t, 4, all[0].Len())
	assert.Equal(t, "Only X amino acids", all[1].ID)
	assert.Equal(t, 10, all[1].Len())

	_, err = rdr.Read()
	assert.Equal(t, io.EOF, err)
}

// aligned formats a Q or T line of an alignment block, with the residues
// starting at column 22.
func aligned(qt, name string, start int, residues string, end, length int) string {
	return fmt.Sprintf("%s %-14.14s %4d %s %4d (%d)",
		qt, name, start, residues, end, length)
}

// tinyReport returns a report with a single hit. Each pair of strings in
// replace is substituted in the report before it is returned.
func tinyReport(replace ...string) string {
	report := strings.Join([]string{
		"Query         tiny",
		"Match_columns 5",
		"No_of_seqs    1 out of 1",
		"Neff          1",
		"",
		" No Hit                             Prob E-value P-value  Score    SS Cols Query HMM  Template HMM",
		"  1 abc_A some protein             90.0 1.0E-03 1.0E-08   20.0   0.0    4    1-4       2-5   (10)",
		"",
		"No 1",
		">abc_A some protein; the full description",
		"Probab=90.00  E-value=0.001  Score=20.00  Aligned_cols=4  Identities=50%  Similarity=0.5  Sum_probs=3.0  Template_Neff=1.000",
		"",
		aligned("Q", "tiny", 1, "AC-DE", 4, 5),
		"                      |  |",
		aligned("T", "abc_A", 2, "ACGD-", 5, 10),
		"Confidence            9999",
		"",
		"Done!",
		"",
	}, "\n")
	return strings.NewReplacer(replace...).Replace(report)
}

func TestReadTiny(t *testing.T) {
	qr, err := Read(strings.NewReader(tinyReport()))
	require.NoError(t, err)
	require.Equal(t, 1, qr.Len())

	hit := qr.Hits[0]
	assert.Equal(t, "abc_A_1", hit.ID)
	assert.Equal(t, "some protein; the full description", hit.Description)
	assert.InDelta(t, 0.9, hit.Prob, 1e-9)
	assert.Equal(t, 0.001, hit.EValue)

	hsp := hit.HSPs[0]
	assert.Equal(t, "AC-DE", string(hsp.Query.Residues))
	assert.Equal(t, "ACGD-", string(hsp.Hit.Residues))
	assert.Equal(t, "|  | ", hsp.Annotations[AnnotationMatch])
	assert.Equal(t, "9999 ", hsp.Confidence())
	assert.InDelta(t, 0.5, hsp.Identity, 1e-9)
}

func TestReadDescriptionFallback(t *testing.T) {
	qr, err := Read(strings.NewReader(tinyReport(
		">abc_A some protein; the full description", ">abc_A")))
	require.NoError(t, err)
	assert.Equal(t, "some protein", qr.Hits[0].Description)
}

func TestReadScoresFromTable(t *testing.T) {
	qr, err := Read(strings.NewReader(tinyReport(
		"Probab=90.00  E-value=0.001  Score=20.00",
		"Probab=-  E-value=-  Score=-")))
	require.NoError(t, err)
	assert.InDelta(t, 0.9, qr.Hits[0].Prob, 1e-9)
	assert.Equal(t, 1.0e-3, qr.Hits[0].EValue)
	assert.Equal(t, 20.0, qr.Hits[0].Score)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		replace []string
		want    error
		line    int
	}{
		{
			"bad e-value",
			[]string{"E-value=0.001", "E-value=1.0x-3"},
			ErrMalformedNumber, 11,
		},
		{
			"infinite score",
			[]string{"Score=20.00", "Score=Inf"},
			ErrMalformedNumber, 11,
		},
		{
			"bad table row",
			[]string{"   20.0   0.0", "   20.0   abc"},
			ErrMalformedNumber, 7,
		},
		{
			"garbage in block",
			[]string{"Confidence", "garbage   "},
			ErrUnrecognizedLine, 16,
		},
		{
			"indented text in block",
			[]string{"                      |  |", "   this is not an hhr line at all 123"},
			ErrUnrecognizedLine, 14,
		},
		{
			"match line of other symbols",
			[]string{"Confidence            9999", "                      xyz!"},
			ErrUnrecognizedLine, 16,
		},
		{
			"second match line in chunk",
			[]string{"Confidence            9999", "                      |   +"},
			ErrUnrecognizedLine, 16,
		},
		{
			"garbage in header",
			[]string{"Neff          1", "   Neff 1"},
			ErrUnrecognizedLine, 4,
		},
		{
			"scores before name",
			[]string{">abc_A some protein; the full description\nProbab", "Probab"},
			ErrUnrecognizedLine, 10,
		},
		{
			"sides of different length",
			[]string{"ACGD-    5", "ACGD     5"},
			ErrMisalignedBlock, 9,
		},
		{
			"no template",
			[]string{aligned("T", "abc_A", 2, "ACGD-", 5, 10), ""},
			ErrMisalignedBlock, 9,
		},
		{
			"range disagrees with residues",
			[]string{"AC-DE    4", "AC-DE    5"},
			ErrCoordinateMismatch, 9,
		},
		{
			"range disagrees with table",
			[]string{"    1-4       2-5", "    1-4       3-6"},
			ErrCoordinateMismatch, 9,
		},
		{
			"query length disagrees with header",
			[]string{"Match_columns 5", "Match_columns 6"},
			ErrCoordinateMismatch, 9,
		},
		{
			"no query length",
			[]string{"Match_columns 5\n", ""},
			ErrIncompleteReport, 0,
		},
		{
			"table names another hit",
			[]string{"  1 abc_A", "  1 xyz_A"},
			ErrStructuralInvariantViolation, 9,
		},
		{
			"alignments out of order",
			[]string{"No 1", "No 2"},
			ErrStructuralInvariantViolation, 9,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tinyReport(test.replace...)))
			require.ErrorIs(t, err, test.want)

			var herr *Error
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, test.line, herr.Line, err.Error())
		})
	}
}

func TestReadTrustCoordinates(t *testing.T) {
	report := tinyReport("    1-4       2-5", "    1-4       3-6")

	_, err := Read(strings.NewReader(report))
	require.ErrorIs(t, err, ErrCoordinateMismatch)

	rdr := NewReader(strings.NewReader(report))
	rdr.TrustCoordinates = true
	qr, err := rdr.Read()
	require.NoError(t, err)
	assert.Equal(t, 2, qr.Hits[0].HSPs[0].HitStart)

	// Residue counts are checked regardless.
	rdr = NewReader(strings.NewReader(
		tinyReport("AC-DE    4", "AC-DE    5")))
	rdr.TrustCoordinates = true
	_, err = rdr.Read()
	require.ErrorIs(t, err, ErrCoordinateMismatch)
}

func TestReadErrorIsSticky(t *testing.T) {
	bad := tinyReport("E-value=0.001", "E-value=oops")
	rdr := NewReader(strings.NewReader(bad + tinyReport()))

	_, err := rdr.Read()
	require.ErrorIs(t, err, ErrMalformedNumber)
	_, err2 := rdr.Read()
	require.Equal(t, err, err2)
}
