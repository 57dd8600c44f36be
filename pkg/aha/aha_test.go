package aha

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritzlink/fritzlink-go/pkg/fault"
)

func TestMD5Response(t *testing.T) {
	// the vendor's documented reference values
	assert.Equal(t, "1234567z-9e224a41eeefa284df7bb0f26c2913e2",
		md5Response("1234567z", "äbc"))
}

func TestPBKDF2Response(t *testing.T) {
	const challenge = "2$10000$d4949767019d1e6eed27c27f404c7aa7$2000$4f3415a3b5396a9675d08906ee6a6933"

	response, err := pbkdf2Response(challenge, "1example!")
	require.NoError(t, err)

	parts := strings.SplitN(response, "$", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "4f3415a3b5396a9675d08906ee6a6933", parts[0], "prefixed with the second salt")
	assert.Len(t, parts[1], 64, "sha-256 digest in hex")

	again, err := pbkdf2Response(challenge, "1example!")
	require.NoError(t, err)
	assert.Equal(t, response, again, "deterministic")

	other, err := pbkdf2Response(challenge, "different")
	require.NoError(t, err)
	assert.NotEqual(t, response, other)
}

func TestPBKDF2ResponseMalformed(t *testing.T) {
	for _, challenge := range []string{"2$only$three", "2$x$zz$1$aa", "2$1$zz$1$aa"} {
		_, err := pbkdf2Response(challenge, "secret")
		assert.Error(t, err, "challenge %q", challenge)
	}
}

func TestChallengeResponseSelectsScheme(t *testing.T) {
	legacy, err := challengeResponse("1234567z", "äbc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(legacy, "1234567z-"))

	modern, err := challengeResponse("2$1$aa$1$bb", "secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(modern, "bb$"))
}

// testBox simulates the login and command endpoints.
type testBox struct {
	server   *httptest.Server
	validSID string
	logins   int
	// sids the command endpoint has already rejected
	expired map[string]bool
}

func newTestBox(t *testing.T) *testBox {
	t.Helper()
	box := &testBox{validSID: "f00dcafe00000001", expired: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/login_sid.lua", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<SessionInfo><SID>0000000000000000</SID>`+
				`<Challenge>1234567z</Challenge><BlockTime>0</BlockTime></SessionInfo>`)
			return
		}
		require.NoError(t, r.ParseForm())
		box.logins++
		if r.PostForm.Get("response") == md5Response("1234567z", "secret") {
			fmt.Fprintf(w, "<SessionInfo><SID>%s</SID><BlockTime>0</BlockTime></SessionInfo>", box.validSID)
			return
		}
		fmt.Fprint(w, `<SessionInfo><SID>0000000000000000</SID><BlockTime>32</BlockTime></SessionInfo>`)
	})
	mux.HandleFunc("/webservices/homeautoswitch.lua", func(w http.ResponseWriter, r *http.Request) {
		sid := r.URL.Query().Get("sid")
		if sid != box.validSID || box.expired[sid] {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.URL.Query().Get("switchcmd") {
		case "getswitchlist":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, "116570069382")
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	box.server = httptest.NewServer(mux)
	t.Cleanup(box.server.Close)
	return box
}

func (b *testBox) session(password string) *Session {
	return &Session{
		Endpoint: b.server.URL,
		User:     "admin",
		Password: password,
		Client:   b.server.Client(),
	}
}

func TestExecute(t *testing.T) {
	box := newTestBox(t)
	session := box.session("secret")

	resp, err := session.Execute("getswitchlist", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "116570069382", resp.Body)
	assert.Contains(t, resp.ContentType, "text/plain")
	assert.Equal(t, 1, box.logins)

	// the session id is reused across commands
	_, err = session.Execute("getswitchlist", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, box.logins)
}

func TestExecuteRenewsExpiredSession(t *testing.T) {
	box := newTestBox(t)
	session := box.session("secret")

	_, err := session.Execute("getswitchlist", "", nil)
	require.NoError(t, err)

	// invalidate the current sid and rotate to a new one
	box.expired[box.validSID] = true
	box.validSID = "f00dcafe00000002"

	resp, err := session.Execute("getswitchlist", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "116570069382", resp.Body)
	assert.Equal(t, 2, box.logins, "exactly one re-login")
}

func TestExecuteRejectedLogin(t *testing.T) {
	box := newTestBox(t)
	session := box.session("wrong")

	_, err := session.Execute("getswitchlist", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrAuthorization)
	assert.Contains(t, err.Error(), "blocked for 32 seconds")
}

func TestExecuteUnknownCommand(t *testing.T) {
	box := newTestBox(t)
	session := box.session("secret")

	_, err := session.Execute("nosuchcommand", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterface)
}

func TestExecuteUnreachableHost(t *testing.T) {
	session := &Session{Endpoint: "http://127.0.0.1:1", User: "admin", Password: "secret"}
	_, err := session.Execute("getswitchlist", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrConnection)
}
