// Package auth resolves bearer tokens into principals.
//
// Tokens are HS256 JWTs signed with a shared secret. The subject claim is
// the principal id and must be present; the email claim is optional.
// Issuer and audience are checked only when configured.
//
//	v, err := auth.NewVerifier(cfg)
//	fn := ironlog.NewFunction("/plans", ironlog.WithAuthenticator(v))
package auth
