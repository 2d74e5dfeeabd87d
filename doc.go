// Package linkml implements schema ingestion, resolution, and high-throughput
// validation for LinkML schemas: parsing a source document, resolving its
// imports, materializing the effective per-class slot tables across is_a and
// mixin chains, and compiling a validator bank used to check arbitrary
// JSON-shaped instance data against it.
package linkml
