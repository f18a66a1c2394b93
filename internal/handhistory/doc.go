// Package handhistory records finished hands in the open PHH format so they
// can be replayed or analysed with standard poker tooling.
package handhistory
