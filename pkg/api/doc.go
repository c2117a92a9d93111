// Package api holds the request and response messages of the slotledger.v1
// RPC services. Messages travel as JSON; money is a decimal string with two
// places ("3.80"), timestamps are Unix seconds and calendar days are
// "2006-01-02".
package api
