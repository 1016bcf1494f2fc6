// Package log provides secure logging for qrreader, built on top of the
// standard slog package.
//
// The SecureHandler masks sensitive information before it reaches the
// underlying handler:
//   - attributes whose key names a credential (authorization, cookie, token, ...)
//   - values that look like bearer/basic credentials, JWTs or private keys
//   - credential-bearing query parameters of URLs, including URLs embedded in
//     error messages (pre-signed URLs carry X-Amz-Signature, sig, token, ...)
//
// Fetched URLs are logged on every read, so the URL redaction is what makes
// it safe to keep request logs.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, log.Level(verbose, slog.LevelInfo))
//	logger.Info("fetch request response",
//	    "url", "https://bucket.s3.amazonaws.com/qr.png?X-Amz-Signature=abc", // query value masked
//	    "status", 200,
//	)
package log
