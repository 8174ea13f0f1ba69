package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// TokenTypeBearer is reported to clients next to every issued access token.
const TokenTypeBearer = "bearer"
