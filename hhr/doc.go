/*
Package hhr provides routines for reading (but not writing) hhr files, which
are the output produced by hhsuite's hhsearch and hhblits programs.

An hhr file has a header, a summary table of hits and an alignment block for
each of the hits (or for the first few of them). Everything is read: the
header becomes a QueryResult, the alignment blocks become Hits with a single
HSP each, and the rows of the hit table are kept in QueryResult.Summary.
Several hhr files may be concatenated; a Reader returns one QueryResult for
each of them.

HHR files are meant for humans. Columns are padded to fixed widths, names and
descriptions are cut wherever the column ends and numbers are written in
whatever style printf felt like. So this package is strict: a line that
can't be accounted for stops the read with an *Error, as does an alignment
whose coordinates don't add up. A report with a header but no hits is an
error too, since it can't be told apart from a truncated one.

The same template may be hit more than once (e.g., for proteins with repeated
domains). Hit.ID tells such hits apart by appending a counter to the name:
'1wga_1', '1wga_2' and so on.
*/
package hhr
