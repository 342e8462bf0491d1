package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/filex"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/netx"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/auth"
	gs "github.com/mohitexpo007/Ocean-Hazard-App/internal/server/grpc"
)

var errUsage = errors.New("usage")

const imageDir = "images"

// download is a test seam for netx.DownloadPresigned.
var download = netx.DownloadPresigned

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func (a *App) Ping(ctx context.Context) error {
	_, err := a.call(ctx, gs.MethodPing, map[string]any{})
	return err
}

// Analyze submits a report. Arguments: report_id user_id lat lon, then an
// optional image=<path>, then free text.
func (a *App) Analyze(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return usage("analyze <report_id> <user_id> <lat> <lon> [image=<path>] [text...]")
	}
	lat, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	lon, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("lon: %w", err)
	}

	req := map[string]any{
		"report_id": args[0],
		"user_id":   args[1],
		"lat":       lat,
		"lon":       lon,
	}

	rest := args[4:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "image=") {
		data, err := os.ReadFile(strings.TrimPrefix(rest[0], "image="))
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		req["image"] = base64.StdEncoding.EncodeToString(data)
		rest = rest[1:]
	}
	if len(rest) > 0 {
		req["text"] = strings.Join(rest, " ")
	}

	return a.show(a.call(ctx, gs.MethodAnalyzeReport, req))
}

func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("verify <report_id>")
	}
	if tok := a.getToken(); tok != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, tok)
	}
	return a.show(a.call(ctx, gs.MethodVerifyReport, map[string]any{"report_id": args[0]}))
}

func (a *App) Report(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("report <report_id>")
	}
	return a.show(a.call(ctx, gs.MethodGetReport, map[string]any{"report_id": args[0]}))
}

// Image downloads the archived image of a report through its presigned link
// and saves it as ./images/<report_id>.img.
func (a *App) Image(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("image <report_id>")
	}
	out, err := a.call(ctx, gs.MethodGetReport, map[string]any{"report_id": args[0]})
	if err != nil {
		return err
	}
	url := out.GetFields()["image_url"].GetStringValue()
	if url == "" {
		return fmt.Errorf("report %s has no archived image", args[0])
	}

	data, err := download(ctx, url)
	if err != nil {
		return err
	}
	path, err := filex.Save(imageDir, args[0]+".img", data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), path)
	return nil
}

func (a *App) Reports(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("reports <user_id>")
	}
	return a.show(a.call(ctx, gs.MethodListUserReports, map[string]any{"user_id": args[0]}))
}

func (a *App) User(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("user <user_id>")
	}
	return a.show(a.call(ctx, gs.MethodGetUser, map[string]any{"user_id": args[0]}))
}

// Token either mints a verifier token for a subject from the signing secret
// (read without echo) or installs a token issued elsewhere.
func (a *App) Token(ctx context.Context, args []string) error {
	switch {
	case len(args) == 2 && args[0] == "set":
		a.setToken(args[1])
		fmt.Fprintln(a.out, "Token set")
		return nil
	case len(args) == 1:
		secret, err := GetSecret(a.out, "Signing secret")
		if err != nil {
			return err
		}
		defer clear(secret)
		if len(secret) == 0 {
			return fmt.Errorf("empty signing secret")
		}
		tok, err := auth.GenerateToken(args[0], auth.RoleVerifier, secret, a.config.TokenValidity)
		if err != nil {
			return err
		}
		a.setToken(tok)
		fmt.Fprintf(a.out, "Verifier token for %s valid for %s\n", args[0], a.config.TokenValidity)
		return nil
	default:
		return usage("token <subject> | token set <jwt>")
	}
}

func (a *App) Logout(ctx context.Context) error {
	a.setToken("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	if a.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
	}
	return a.api.Call(ctx, method, in)
}

func (a *App) show(out *structpb.Struct, err error) error {
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(out.AsMap(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}
