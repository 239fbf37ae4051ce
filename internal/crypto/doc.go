// Package crypto implements the payload cipher used between the two ends of
// a session.
//
// Contents
//
//   - Random key and IV generation (GenerateKey)
//   - AES-256-CBC with PKCS#7 padding, authenticated with HMAC-SHA256 over
//     ciphertext||iv (Encrypt, EncryptWithIV, Decrypt, AESCBC)
//   - Short fingerprints of key material for logging (Fingerprint)
//   - Best-effort memory wiping for key material (Wipe)
//
// # Notes
//
// The engine is stateless: the caller owns the key and passes it on every
// call. All envelope fields cross the boundary as lower-case hex.
package crypto
