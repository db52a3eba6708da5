package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/urfave/cli/v2"

	"Agora/internal/auth"
)

// gentoken creates credentials for local development.
//
// Usage:
//
//	go run ./cmd/gentoken hs256 --did did:plc:alice --secret $AUTH_JWT_SECRET
//	go run ./cmd/gentoken keygen --kid dev-key --out dev-key.json --jwks jwks.json
//	go run ./cmd/gentoken es256 --did did:plc:alice --key dev-key.json
func main() {
	app := &cli.App{
		Name:  "gentoken",
		Usage: "generate bearer tokens and signing keys for the Agora AppView",
		Commands: []*cli.Command{
			{
				Name:  "hs256",
				Usage: "issue a token signed with the shared AUTH_JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "did", Required: true, Usage: "subject DID"},
					&cli.StringFlag{Name: "secret", EnvVars: []string{"AUTH_JWT_SECRET"}, Required: true},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
				},
				Action: issueHS256,
			},
			{
				Name:  "keygen",
				Usage: "generate an ES256 signing key and the public JWKS to serve at AUTH_JWKS_URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kid", Value: "agora-dev-key"},
					&cli.StringFlag{Name: "out", Value: "agora-private-key.json", Usage: "private JWK output path"},
					&cli.StringFlag{Name: "jwks", Value: "jwks.json", Usage: "public JWKS output path"},
				},
				Action: generateKey,
			},
			{
				Name:  "es256",
				Usage: "issue a token signed with a private JWK from keygen",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "did", Required: true, Usage: "subject DID"},
					&cli.StringFlag{Name: "key", Value: "agora-private-key.json", Usage: "private JWK path"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
				},
				Action: issueES256,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func issueHS256(c *cli.Context) error {
	token, err := auth.IssueHS256([]byte(c.String("secret")), c.String("did"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func generateKey(c *cli.Context) error {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	key, err := jwk.FromRaw(privateKey)
	if err != nil {
		return fmt.Errorf("failed to create JWK from private key: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, c.String("kid")); err != nil {
		return fmt.Errorf("failed to set kid: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, auth.AlgorithmES256); err != nil {
		return fmt.Errorf("failed to set alg: %w", err)
	}
	if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return fmt.Errorf("failed to set use: %w", err)
	}

	publicKey, err := key.PublicKey()
	if err != nil {
		return fmt.Errorf("failed to derive public key: %w", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(publicKey); err != nil {
		return fmt.Errorf("failed to build JWKS: %w", err)
	}

	if err := writeJSON(c.String("out"), key, 0o600); err != nil {
		return err
	}
	if err := writeJSON(c.String("jwks"), set, 0o644); err != nil {
		return err
	}

	fmt.Printf("Private key written to %s (keep it out of version control)\n", c.String("out"))
	fmt.Printf("Public JWKS written to %s; serve it and set AUTH_JWKS_URL\n", c.String("jwks"))
	return nil
}

func issueES256(c *cli.Context) error {
	did := c.String("did")
	if _, err := syntax.ParseDID(did); err != nil {
		return fmt.Errorf("invalid DID %q: %w", did, err)
	}

	data, err := os.ReadFile(c.String("key"))
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	key, err := jwk.ParseKey(data)
	if err != nil {
		return fmt.Errorf("failed to parse key: %w", err)
	}

	var privateKey ecdsa.PrivateKey
	if err := key.Raw(&privateKey); err != nil {
		return fmt.Errorf("key is not an ES256 private key: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   did,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.Duration("ttl"))),
		},
	})
	token.Header["kid"] = key.KeyID()

	signed, err := token.SignedString(&privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Println(signed)
	return nil
}

func writeJSON(path string, v interface{}, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
