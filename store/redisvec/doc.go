// Package redisvec implements a vector store on Redis with the RediSearch
// module. Points are stored as hashes and nearest-neighbor queries run
// through FT.SEARCH with a KNN clause. Vectors are validated against the
// configured dimensionality before any write or query.
package redisvec
