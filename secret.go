package users

// SigningSecret derives the per-user JWT signing secret by appending the
// user's stored password hash to the service signing key. Any password
// change rotates the hash and with it the secret, so previously issued
// tokens stop verifying without any server-side revocation state.
func SigningSecret(signingKey, passwordHash string) []byte {
	return []byte(signingKey + passwordHash)
}
