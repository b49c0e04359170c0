package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixil98/go-mud-client/internal/reply"
)

// Operation documents, one per server capability the client exercises.
const (
	loginDocument = `mutation login($username: String!, $password: String!) {
    login(credentials: { username: $username, password: $password })
}`
	redeemInviteDocument = `mutation redeemInvite($username: String!, $password: String!, $token: String!, $secret: String!) {
    login(credentials: { username: $username, password: $password, token: $token, secret: $secret })
}`
	languageDocument = `mutation language($text: String!, $evaluator: Key!) {
    language(criteria: { text: $text, evaluator: $evaluator, reach: 1, subscription: true }) {
        reply
        entities {
            key
            serialized
        }
    }
}`
	updateEntityDocument = `mutation updateEntity($key: String!, $serialized: String!) {
    update(entities: [{ key: $key, serialized: $serialized }]) {
        affected {
            key
            serialized
        }
    }
}`
	entityDocument = `query entity($key: Key!) {
    entitiesByKey(key: $key) {
        key
        serialized
    }
}`
	areasDocument = `query areas {
    areas {
        key
        serialized
    }
}`
	peopleDocument = `query people {
    people {
        key
        serialized
    }
}`
)

// Auth is the credential bundle a successful login returns.
type Auth struct {
	Key   string `json:"key"`
	Token string `json:"token"`
}

// Login exchanges a username and password for an auth bundle.
func (c *Client) Login(ctx context.Context, username, password string) (*Auth, error) {
	return c.login(ctx, loginDocument, map[string]any{
		"username": username,
		"password": password,
	})
}

// RedeemInvite logs in by consuming an invite token and secret pair,
// creating the player if needed.
func (c *Client) RedeemInvite(ctx context.Context, username, password, token, secret string) (*Auth, error) {
	return c.login(ctx, redeemInviteDocument, map[string]any{
		"username": username,
		"password": password,
		"token":    token,
		"secret":   secret,
	})
}

func (c *Client) login(ctx context.Context, document string, vars map[string]any) (*Auth, error) {
	var out struct {
		Login json.RawMessage `json:"login"`
	}
	if err := c.do(ctx, document, vars, &out); err != nil {
		var oe *OperationError
		if errors.As(err, &oe) {
			return nil, &AuthError{Reason: oe.Error()}
		}
		return nil, err
	}

	var auth Auth
	if err := json.Unmarshal(out.Login, &auth); err != nil {
		return nil, fmt.Errorf("unmarshalling auth: %w", err)
	}
	if auth.Token == "" {
		return nil, &AuthError{Reason: "empty token"}
	}

	return &auth, nil
}

// Evaluation is the result of submitting one line of player language.
type Evaluation struct {
	Reply    reply.Wire          `json:"reply"`
	Entities []reply.KeyedEntity `json:"entities"`
}

// Language submits a natural-language command for the given evaluator.
func (c *Client) Language(ctx context.Context, text, evaluator string) (*Evaluation, error) {
	var out struct {
		Language *Evaluation `json:"language"`
	}
	err := c.do(ctx, languageDocument, map[string]any{
		"text":      text,
		"evaluator": evaluator,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Language == nil {
		return nil, fmt.Errorf("language mutation returned no evaluation")
	}
	return out.Language, nil
}

// UpdateEntity pushes one edited entity back to the server and returns the
// entities the update touched.
func (c *Client) UpdateEntity(ctx context.Context, key, serialized string) ([]reply.KeyedEntity, error) {
	var out struct {
		Update struct {
			Affected []reply.KeyedEntity `json:"affected"`
		} `json:"update"`
	}
	err := c.do(ctx, updateEntityDocument, map[string]any{
		"key":        key,
		"serialized": serialized,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Update.Affected, nil
}

// EntitiesByKey fetches the serialized entity for a key, along with whatever
// else the server materialized alongside it.
func (c *Client) EntitiesByKey(ctx context.Context, key string) ([]reply.KeyedEntity, error) {
	var out struct {
		EntitiesByKey []reply.KeyedEntity `json:"entitiesByKey"`
	}
	if err := c.do(ctx, entityDocument, map[string]any{"key": key}, &out); err != nil {
		return nil, err
	}
	return out.EntitiesByKey, nil
}

// Areas fetches every area in the world.
func (c *Client) Areas(ctx context.Context) ([]reply.KeyedEntity, error) {
	var out struct {
		Areas []reply.KeyedEntity `json:"areas"`
	}
	if err := c.do(ctx, areasDocument, nil, &out); err != nil {
		return nil, err
	}
	return out.Areas, nil
}

// People fetches every living entity in the world.
func (c *Client) People(ctx context.Context) ([]reply.KeyedEntity, error) {
	var out struct {
		People []reply.KeyedEntity `json:"people"`
	}
	if err := c.do(ctx, peopleDocument, nil, &out); err != nil {
		return nil, err
	}
	return out.People, nil
}
