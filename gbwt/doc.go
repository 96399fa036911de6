// Package gbwt implements a succinct, run-length compressed index over a
// collection of node-id sequences drawn from a graph alphabet: the Graph
// Burrows-Wheeler Transform (GBWT).
//
// A GBWT represents a set of paths over a labeled graph, each path a
// sequence of node identifiers terminated by the endmarker id 0, so that
// three operations stay cheap: walking one step backwards through the
// virtual BWT (LF mapping), recovering the original sequence id at a
// sampled BWT position (tryLocate), and incrementally inserting new
// sequences into the index.
package gbwt
