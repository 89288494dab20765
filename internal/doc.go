// Package internal implements the request pipeline behind the public ironlog
// package: route matching, method dispatch, ownership checks and the JSON
// response envelopes. Applications use the aliases exported from the root
// package instead of importing this one.
package internal
