package store

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/pixil98/go-mud-client/internal/api"
	"github.com/pixil98/go-mud-client/internal/reply"
)

// fakeAPI satisfies API with canned responses and call counters.
type fakeAPI struct {
	auth     *api.Auth
	loginErr error
	logins   int
	invites  int

	evaluation  *api.Evaluation
	languageErr error

	byKey   map[string][]reply.KeyedEntity
	fetches int

	areas  []reply.KeyedEntity
	people []reply.KeyedEntity
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*api.Auth, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.auth, nil
}

func (f *fakeAPI) RedeemInvite(_ context.Context, _, _, _, _ string) (*api.Auth, error) {
	f.invites++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.auth, nil
}

func (f *fakeAPI) Language(_ context.Context, _, _ string) (*api.Evaluation, error) {
	if f.languageErr != nil {
		return nil, f.languageErr
	}
	return f.evaluation, nil
}

func (f *fakeAPI) UpdateEntity(_ context.Context, key, _ string) ([]reply.KeyedEntity, error) {
	return f.byKey[key], nil
}

func (f *fakeAPI) EntitiesByKey(_ context.Context, key string) ([]reply.KeyedEntity, error) {
	f.fetches++
	return f.byKey[key], nil
}

func (f *fakeAPI) Areas(_ context.Context) ([]reply.KeyedEntity, error) {
	return f.areas, nil
}

func (f *fakeAPI) People(_ context.Context) ([]reply.KeyedEntity, error) {
	return f.people, nil
}

// fakeChannel records lifecycle calls in order.
type fakeChannel struct {
	ops []string
}

func (c *fakeChannel) Connect(token string) {
	c.ops = append(c.ops, "connect:"+token)
}

func (c *fakeChannel) Disconnect() {
	c.ops = append(c.ops, "disconnect")
}

// fakePublisher records published subjects.
type fakePublisher struct {
	subjects []string
}

func (p *fakePublisher) Publish(subject string, _ []byte) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func entityJSON(key, name string) string {
	return fmt.Sprintf(`{"key":%q,"klass":{"py/type":"scopes.ItemClass"},"props":{"map":{"name":{"value":%q}}}}`, key, name)
}

func keyed(key, name string) reply.KeyedEntity {
	return reply.KeyedEntity{Key: key, Serialized: entityJSON(key, name)}
}

func mustEnvelope(t *testing.T, data string) *reply.Envelope {
	t.Helper()
	e, err := reply.Decode([]byte(data))
	if err != nil {
		t.Fatalf("decoding envelope: %s", err)
	}
	return e
}

func informationEnvelope(t *testing.T, rows ...reply.KeyedEntity) *reply.Envelope {
	t.Helper()
	entities := ""
	for i, row := range rows {
		if i > 0 {
			entities += ","
		}
		entities += fmt.Sprintf(`{"key":%q,"serialized":%s}`, row.Key, strconv.Quote(row.Serialized))
	}
	return mustEnvelope(t, fmt.Sprintf(`{"py/object":"Information","information":true,"entities":[%s]}`, entities))
}
