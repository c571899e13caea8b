// Package auth stores model provider API keys.
//
// Keys are looked up in the system keychain (go-keyring), then an AES-GCM
// encrypted file under the user config directory, then provider
// environment variables such as OPENAI_API_KEY.
package auth
