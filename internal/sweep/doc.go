// Package sweep drives the parameter studies: for each configured study
// it integrates the similarity system once per perturbation factor, with
// the studied parameter cycled through its value table, and collects the
// requested profile column of every run.
//
// The driver is a pure batch pipeline. Runs share nothing beyond the
// read-only configuration; a failed integration aborts its study.
package sweep
