/*
Package fasta provides routines for writing sequences in the FASTA format.
Routines are also provided to write aligned FASTA files, where every sequence
has the same length and gaps are written as '-'.

The format used is the one described by NCBI:
http://blast.ncbi.nlm.nih.gov/blastcgihelp.shtml

Sequences are written as they are. In particular, residues are not checked or
translated, so the aligned sequences of an hhr alignment can be written
without losing the case of insertions or the '.' gaps some tools emit.
*/
package fasta
