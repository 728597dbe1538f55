// Package chromem implements the vector index on top of the embedded
// chromem-go database. Chunk metadata is stored with each embedding so a
// query result reconstructs the full chunk without a store lookup.
package chromem
