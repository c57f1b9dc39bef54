/*
Package crypto provides the store's Encryptor capability: a symmetric,
byte-in/byte-out transform that PersistentCell applies below the codec.

# Architecture

	Plaintext (codec.Encode(state)) → Encryptor.Encrypt → bytes on disk
	bytes on disk → Encryptor.Decrypt → codec.Decode → state

Two implementations are provided:

  - Passthrough: the identity transform, used when a store has no
    encryption configured. Plain canonical JSON lands on disk.
  - AESGCMEncryptor: AES-256-GCM with a 256-bit key derived from a
    caller-supplied passphrase via SHA-256. Ciphertext layout is
    nonce || ciphertext || tag, exactly as emitted by cipher.AEAD.Seal.

# Key derivation

	key = SHA-256(passphrase)

The same passphrase always derives the same key, so callers only need to
remember the passphrase (or store name) used when a store was first
written, not a separately-managed key file.

# Usage

	enc, err := crypto.NewAESGCMEncryptorFromPassphrase("correct horse battery staple")
	if err != nil {
		return err
	}
	ciphertext, err := enc.Encrypt(plaintext)
	...
	plaintext, err := enc.Decrypt(ciphertext)

# Failure behavior

Encrypt/Decrypt return a plain error on failure (tampering, wrong key,
truncated ciphertext); they never silently return the input unchanged. The
caller (PersistentCell's read path) decides how to react — per spec, a
decode or decrypt failure on read downgrades to the codec's default value
and is logged, rather than propagated as a fatal error. See pkg/storage.

# Threat model

AES-256-GCM protects the on-disk bytes against tampering (the
authentication tag) and disclosure (confidentiality), assuming the
passphrase itself is kept secret. It does not protect against a compromised
process memory space, and it does not implement key rotation — rotating the
passphrase requires decrypting with the old key and re-encrypting with the
new one, which is the caller's responsibility, not this package's.
*/
package crypto
