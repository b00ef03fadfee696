// Package users provides a user directory with authentication: registration,
// login, JWT issuance, and bearer-token verification backed by Bun
// repositories.
//
// Token secrets:
//   - Tokens are signed with a per-user secret derived from the service
//     signing secret plus the user's current password hash (SigningSecret).
//     Changing a password rotates the derived secret and silently invalidates
//     every token previously issued to that user. There is no revocation list.
//
// Directory writes:
//   - Creates and updates run an explicit pre-write pipeline (email
//     uniqueness against other live records, hashing of any staged plaintext
//     password) inside the same transaction as the write it guards.
//
// HTTP:
//   - HTTPController exposes POST /auth/login, POST /users, and
//     GET /users/:userId as a JSON API. Protected routes go through
//     middleware/jwtware, which looks up the token subject and re-derives the
//     expected secret on every request.
package users
