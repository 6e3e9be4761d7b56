// Package cluster groups grayscale image samples into clusters of similar
// shapes by agglomerative clustering.
//
// Every sample starts in its own cluster. The engine repeatedly merges the
// pair of clusters whose clustroids are closest, and stops at the first merge
// whose resulting diameter exceeds the configured threshold, or when a single
// cluster is left.
package cluster
