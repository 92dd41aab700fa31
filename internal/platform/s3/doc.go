// Package s3 provides a small client for S3-compatible object storage.
//
// It is used to mirror the success record to a bucket, normally OCI Object
// Storage through its Amazon S3 Compatibility API. OCI requires path-style
// addressing; the endpoint has the form
// https://<namespace>.compat.objectstorage.<region>.oraclecloud.com
// (see CompatEndpoint).
package s3
