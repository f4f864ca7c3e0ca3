// Package crypto holds the passphrase-to-blob encryption pipeline.
//
// Contents
//
//   - Passphrase key derivation, a single SHA-256 round (DeriveKey)
//   - AEAD sealing and opening of byte payloads into base64 blobs (Codec,
//     Encrypt, Decrypt) with AES-256-GCM or ChaCha20-Poly1305
//   - Blob text/raw conversion (EncodeBlob, DecodeBlob)
//   - Best-effort memory wiping for keys (Wipe, WipeKey)
//   - Short key fingerprints for display/logging (Fingerprint)
//
// # Blob layout
//
//	base64.StdEncoding( nonce[12] ‖ ciphertext ‖ tag[16] )
//
// The nonce is drawn from crypto/rand for every call. Decryption is
// all-or-nothing: a blob that fails authentication yields no plaintext.
package crypto
