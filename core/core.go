// Package core implements the computational heart of epitrend: binning raw
// event dates into incidence tables, fitting log-linear growth and decay
// models, and searching for the changepoint between the two phases. All
// operations are pure transforms over immutable inputs.
package core
