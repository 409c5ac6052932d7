// Package netdiff loads the tables used for differential gene-regulatory
// network analysis: expression matrices, motif and PPI priors, and sample
// node-type lists. All inputs are delimited text without headers unless noted.
package netdiff
