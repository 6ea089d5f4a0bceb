package sagereader

/*

Package sagereader reads the binary data products distributed for the
SAGE II and SAGE III solar occultation instruments.  SAGE II v7.00 data
are shipped as monthly file pairs: an index file holding one header
record with per-event summary arrays, and a spec file holding one
detailed record per atmospheric profile.  SAGE III v04.00 data are
shipped as one big-endian event record per file.

The binary layouts are fixed per instrument version and are described
by ordered format tables (see format.go).  The decoder slices each
record sequentially according to its table, so the tables are the
single source of truth for byte offsets.

Loading is organized around monthly file pairs.  A Loader resolves the
index/spec filenames for a year and month, decodes both files, and
aligns the index summary arrays with the decoded profiles.  Load
aggregates the months spanned by a date range into a single Dataset,
with every per-event field sharing one time axis, and applies date and
location subsetting.  Packed quality flags can be expanded into named
boolean fields, and the flat Dataset can be arranged into labeled
arrays with named dimensions and physical metadata.

*/
