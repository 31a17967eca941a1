// Package transform holds the column transforms the engine applies to a
// dataset: birthdate-to-age derivation, one-hot encoding and missing value
// imputation. Parse buckets configuration directives into a Catalog,
// Validate checks the whole catalog against a dataset before anything runs,
// and Stages returns the executor steps in their fixed order.
package transform
