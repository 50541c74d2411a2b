// Package diag defines the diagnostic model shared by descriptor parsing,
// semantic validation and catalog configuration.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string ID (SYN/SEM/IO/CFG families), a short Message, a Primary span and
// optional Notes pointing at related spans.
//
// Checks emit through a Reporter so they stay decoupled from storage. The
// usual sink is BagReporter, which writes into a Bag with a fixed limit;
// DedupReporter drops repeats before forwarding. ReportBuilder lets a caller
// attach notes before Emit.
//
// Rendering lives in internal/diagfmt.
package diag
