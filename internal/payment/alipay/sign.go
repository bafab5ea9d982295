package alipay

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"sort"
	"strings"
)

// buildSignContent 按 key 排序拼接待签名串，跳过 sign 与空值
func buildSignContent(params map[string]string, skip ...string) string {
	excluded := map[string]bool{"sign": true}
	for _, key := range skip {
		excluded[strings.ToLower(key)] = true
	}
	keys := make([]string, 0, len(params))
	for key, value := range params {
		key = strings.TrimSpace(key)
		if key == "" || excluded[strings.ToLower(key)] || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+params[key])
	}
	return strings.Join(parts, "&")
}

// signContentFromForm 回调验签时 sign_type 不参与签名
func signContentFromForm(form map[string][]string) string {
	params := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		params[strings.TrimSpace(key)] = values[0]
	}
	return buildSignContent(params, "sign_type")
}

func digestFor(signType, content string) (crypto.Hash, []byte) {
	if strings.EqualFold(strings.TrimSpace(signType), "RSA") {
		sum := sha1.Sum([]byte(content))
		return crypto.SHA1, sum[:]
	}
	sum := sha256.Sum256([]byte(content))
	return crypto.SHA256, sum[:]
}

func signContent(content, privateKeyRaw, signType string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty sign content", ErrSignGenerate)
	}
	privateKey, err := parsePrivateKey(privateKeyRaw)
	if err != nil {
		return "", err
	}
	hashType, digest := digestFor(signType, content)
	signBytes, err := rsa.SignPKCS1v15(rand.Reader, privateKey, hashType, digest)
	if err != nil {
		return "", fmt.Errorf("%w: sign failed", ErrSignGenerate)
	}
	return base64.StdEncoding.EncodeToString(signBytes), nil
}

func verifyContent(content, sign, publicKeyRaw, signType string) error {
	publicKey, err := parsePublicKey(publicKeyRaw)
	if err != nil {
		return err
	}
	signBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sign))
	if err != nil {
		return fmt.Errorf("%w: decode sign failed", ErrSignatureInvalid)
	}
	hashType, digest := digestFor(signType, content)
	if err := rsa.VerifyPKCS1v15(publicKey, hashType, digest, signBytes); err != nil {
		return fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}
	return nil
}

func decodePEM(raw, fallbackType string) *pem.Block {
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, "\\n", "\n"))
	if normalized == "" {
		return nil
	}
	if !strings.Contains(normalized, "BEGIN") {
		normalized = "-----BEGIN " + fallbackType + "-----\n" + normalized + "\n-----END " + fallbackType + "-----"
	}
	block, _ := pem.Decode([]byte(normalized))
	return block
}

func parsePrivateKey(raw string) (*rsa.PrivateKey, error) {
	block := decodePEM(raw, "PRIVATE KEY")
	if block == nil {
		return nil, fmt.Errorf("%w: private key pem decode failed", ErrSignGenerate)
	}
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if key, ok := parsed.(*rsa.PrivateKey); ok {
			return key, nil
		}
		return nil, fmt.Errorf("%w: private key type is not rsa", ErrSignGenerate)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: parse private key failed", ErrSignGenerate)
}

func parsePublicKey(raw string) (*rsa.PublicKey, error) {
	block := decodePEM(raw, "PUBLIC KEY")
	if block == nil {
		return nil, fmt.Errorf("%w: public key pem decode failed", ErrSignatureInvalid)
	}
	if parsed, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if key, ok := parsed.(*rsa.PublicKey); ok {
			return key, nil
		}
		return nil, fmt.Errorf("%w: public key type is not rsa", ErrSignatureInvalid)
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: parse public key failed", ErrSignatureInvalid)
}
