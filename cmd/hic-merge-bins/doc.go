/*Command hic-merge-bins merges bins of a Hi-C contact matrix. For example,
  from a matrix of 5 kb bins a matrix of 50 kb bins can be derived by merging
  10 consecutive bins. Alternatively, with -running-window, contact values are
  summed over a square window of neighboring bins without changing the matrix
  resolution; the window width is -num-bins and must be odd.

  Correction factors present in the input are not merged and are dropped from
  the output with a warning.

  Usage: hic-merge-bins -matrix in.cmat.gz -num-bins 10 -out out.cmat.gz
*/
package main
