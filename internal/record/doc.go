// Package record persists the success record of a claim.
//
// The record is two lines, the instance OCID and its public IP, each
// newline-terminated. FileStore writes it locally; ObjectStore mirrors it to
// an S3-compatible bucket; Multi fans a save out to several stores.
package record
