package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/client/config"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/auth"
	gs "github.com/mohitexpo007/Ocean-Hazard-App/internal/server/grpc"
)

type fakeAPI struct {
	method string
	in     map[string]any
	token  string
	out    map[string]any
	err    error
}

func (f *fakeAPI) Call(ctx context.Context, method string, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.method = method
	f.in = in.AsMap()
	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			f.token = v[0]
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return structpb.NewStruct(f.out)
}

func newTestApp(api *fakeAPI) (*App, *bytes.Buffer) {
	c := &config.Config{}
	c.LoadDefaults()
	var out bytes.Buffer
	return newApp(c, api, bufio.NewReader(strings.NewReader("")), &out), &out
}

func TestAnalyze_BuildsRequest(t *testing.T) {
	img := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(img, []byte("PNG"), 0o600))

	api := &fakeAPI{out: map[string]any{"report_id": "r1", "status": "Pending", "veracity_score": 0.41}}
	a, out := newTestApp(api)

	err := a.Analyze(context.Background(), []string{"r1", "u1", "13.06", "80.27", "image=" + img, "flooding", "near", "Marina"})
	require.NoError(t, err)

	assert.Equal(t, gs.MethodAnalyzeReport, api.method)
	assert.Equal(t, map[string]any{
		"report_id": "r1",
		"user_id":   "u1",
		"lat":       13.06,
		"lon":       80.27,
		"image":     base64.StdEncoding.EncodeToString([]byte("PNG")),
		"text":      "flooding near Marina",
	}, api.in)
	assert.Contains(t, out.String(), `"veracity_score": 0.41`)
}

func TestAnalyze_BadArgs(t *testing.T) {
	a, _ := newTestApp(&fakeAPI{})
	ctx := context.Background()

	assert.ErrorIs(t, a.Analyze(ctx, []string{"r1", "u1"}), errUsage)
	assert.Error(t, a.Analyze(ctx, []string{"r1", "u1", "north", "80"}))
	assert.Error(t, a.Analyze(ctx, []string{"r1", "u1", "1", "2", "image=/does/not/exist"}))
}

func TestVerify_AttachesToken(t *testing.T) {
	api := &fakeAPI{out: map[string]any{"status": "Verified"}}
	a, _ := newTestApp(api)

	require.NoError(t, a.Verify(context.Background(), []string{"r1"}))
	assert.Empty(t, api.token)

	require.NoError(t, a.Token(context.Background(), []string{"set", "jwt-value"}))
	require.NoError(t, a.Verify(context.Background(), []string{"r1"}))
	assert.Equal(t, "jwt-value", api.token)
	assert.Equal(t, map[string]any{"report_id": "r1"}, api.in)

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.hasToken())
}

func TestToken_MintsVerifierToken(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("secret"), nil }

	a, out := newTestApp(&fakeAPI{})
	require.NoError(t, a.Token(context.Background(), []string{"officer-7"}))

	claims, err := auth.ParseToken(a.getToken(), []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "officer-7", claims.Subject)
	assert.Equal(t, auth.RoleVerifier, claims.Role)
	assert.Contains(t, out.String(), "valid for 1h0m0s")
	assert.Equal(t, "(offline verifier)", a.status())
}

func TestLookups_ErrorsPropagate(t *testing.T) {
	api := &fakeAPI{err: status.Error(codes.NotFound, "not found")}
	a, _ := newTestApp(api)
	ctx := context.Background()

	assert.Equal(t, codes.NotFound, status.Code(a.Report(ctx, []string{"r9"})))
	assert.Equal(t, gs.MethodGetReport, api.method)
	assert.Equal(t, codes.NotFound, status.Code(a.User(ctx, []string{"u9"})))
	assert.Equal(t, codes.NotFound, status.Code(a.Reports(ctx, []string{"u9"})))
	assert.ErrorIs(t, a.Report(ctx, nil), errUsage)
}

func TestOnlineWatcher(t *testing.T) {
	api := &fakeAPI{out: map[string]any{"status": "OK"}}
	a, _ := newTestApp(api)

	a.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, a.getMode())

	api.err = status.Error(codes.Unavailable, "down")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return a.getMode() == ModeOffline }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestImage_SavesDownload(t *testing.T) {
	tmp := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(old) })

	origDownload := download
	t.Cleanup(func() { download = origDownload })
	var gotURL string
	download = func(_ context.Context, url string) ([]byte, error) {
		gotURL = url
		return []byte("PNG"), nil
	}

	api := &fakeAPI{out: map[string]any{"report_id": "r1", "image_url": "https://archive.test/r1"}}
	a, out := newTestApp(api)

	require.NoError(t, a.Image(context.Background(), []string{"r1"}))
	assert.Equal(t, "https://archive.test/r1", gotURL)

	data, err := os.ReadFile(filepath.Join(tmp, "images", "r1.img"))
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG"), data)
	assert.Contains(t, out.String(), "Saved 3 bytes")

	api.out = map[string]any{"report_id": "r2"}
	assert.ErrorContains(t, a.Image(context.Background(), []string{"r2"}), "no archived image")
}
