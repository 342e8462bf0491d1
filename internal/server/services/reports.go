// Package services contains the server-side business logic. ReportService
// scores citizen hazard reports and drives their pending → verified
// lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/logging"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/events"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/geo"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/imagestore"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/metrics"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/repomanager"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/reports"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/scoring"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/signals"
)

// Options tune report lifecycle policy.
type Options struct {
	// IdempotentVerify counts a report's verification towards its owner at
	// most once. When false every verify call increments the counter.
	IdempotentVerify bool
	// RejectDuplicates fails AnalyzeReport for an already stored report ID
	// instead of replacing the stored report.
	RejectDuplicates bool
	// Lookback bounds the age of corroboration candidates. Zero means all.
	Lookback time.Duration
	// MaxCandidates caps the candidate pool, newest first. Zero means no cap.
	MaxCandidates int
}

// Deps are the collaborators of ReportService. Archive, Events, Metrics
// and Logger are optional.
type Deps struct {
	Repos        repomanager.RepositoryManager
	Text         signals.TextClassifier
	Image        signals.ImageClassifier
	Corroborator *scoring.Corroborator
	Archive      imagestore.Archive
	Events       events.Publisher
	Metrics      *metrics.Metrics
	Logger       logging.Logger
}

type ReportService struct {
	repos        repomanager.RepositoryManager
	text         signals.TextClassifier
	image        signals.ImageClassifier
	corroborator *scoring.Corroborator
	archive      imagestore.Archive
	events       events.Publisher
	metrics      *metrics.Metrics
	log          logging.Logger
	opts         Options
	now          func() time.Time
}

func NewReportService(d Deps, opts Options) *ReportService {
	s := &ReportService{
		repos:        d.Repos,
		text:         d.Text,
		image:        d.Image,
		corroborator: d.Corroborator,
		archive:      d.Archive,
		events:       d.Events,
		metrics:      d.Metrics,
		log:          d.Logger,
		opts:         opts,
		now:          time.Now,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	if s.log == nil {
		s.log = logging.Nop{}
	}
	s.log = s.log.With("module", "reports")
	return s
}

// signalOutcome collects what the concurrent signal stage produced.
type signalOutcome struct {
	textLabel, imageLabel string
	textConf, imageConf   float64
	cluster               float64
	imageKey              string

	textErr, imageErr, clusterErr error
}

// AnalyzeReport scores a submission, records it against its submitter and
// stores it as pending. Failing signals are zeroed and reported on the
// result; only validation and storage failures fail the call.
func (s *ReportService) AnalyzeReport(ctx context.Context, req AnalyzeRequest) (*VeracityResult, error) {
	started := s.now()
	if err := validate(req); err != nil {
		return nil, err
	}
	log := s.log.With("report_id", req.ReportID, "user_id", req.UserID)

	if s.opts.RejectDuplicates {
		if _, err := s.repos.Reports().Get(ctx, req.ReportID); err == nil {
			return nil, fmt.Errorf("report %s: %w", req.ReportID, common.ErrorAlreadyExists)
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("lookup report: %w", err)
		}
	}

	pool, err := s.candidates(ctx, req.ReportID, started)
	if err != nil {
		return nil, err
	}

	out := s.collectSignals(ctx, req, pool)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.annotate(ctx, log, out)

	report := &models.Report{
		ID:                    req.ReportID,
		UserID:                req.UserID,
		Text:                  req.Text,
		Lat:                   req.Lat,
		Lon:                   req.Lon,
		TextLabel:             optional(out.textLabel),
		TextConfidence:        out.textConf,
		ImageLabel:            optional(out.imageLabel),
		ImageConfidence:       out.imageConf,
		ImageKey:              out.imageKey,
		CorroborationStrength: out.cluster,
		Status:                models.StatusPending,
		CreatedAt:             started,
	}

	// The report row and the submission count commit together. The report
	// is written first so a rejected duplicate never touches the counter.
	now := s.now()
	err = s.repos.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		prior, err := r.Users.Get(ctx, req.UserID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("lookup user: %w", err)
		}
		// A first-time submitter is created at now, which scores like nil.
		report.UserReputationAtSubmission = scoring.Reputation(prior, now)
		report.VeracityScore = scoring.Fuse(scoring.Signals{
			Text:    out.textConf,
			Image:   out.imageConf,
			User:    report.UserReputationAtSubmission,
			Cluster: out.cluster,
		})

		if err := s.store(ctx, r.Reports, report); err != nil {
			return err
		}
		if _, err := r.Users.RecordSubmission(ctx, req.UserID, now); err != nil {
			return fmt.Errorf("record submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	reputation, score := report.UserReputationAtSubmission, report.VeracityScore

	res := &VeracityResult{
		ReportID:        report.ID,
		Status:          wireStatus(report.Status),
		TextLabel:       report.TextLabel,
		TextConfidence:  report.TextConfidence,
		ImageLabel:      report.ImageLabel,
		ImageConfidence: report.ImageConfidence,
		UserReputation:  reputation,
		ClusterStrength: report.CorroborationStrength,
		VeracityScore:   score,
		ImageError:      errString(out.imageErr),
		TextError:       errString(out.textErr),
		ClusterError:    errString(out.clusterErr),
	}

	s.publish(ctx, log, events.KindAnalyzed, events.ReportAnalyzed{
		ReportID:        report.ID,
		UserID:          report.UserID,
		Lat:             report.Lat,
		Lon:             report.Lon,
		TextLabel:       report.TextLabel,
		ImageLabel:      report.ImageLabel,
		VeracityScore:   score,
		ClusterStrength: report.CorroborationStrength,
		Errors:          nonEmpty(res.TextError, res.ImageError, res.ClusterError),
	})
	s.metrics.ReportAnalyzed(ctx, score, s.now().Sub(started))
	log.Info(ctx, "report analyzed", "veracity", score, "reputation", reputation, "cluster", out.cluster)

	return res, nil
}

func validate(req AnalyzeRequest) error {
	switch {
	case req.ReportID == "":
		return fmt.Errorf("%w: report_id is required", common.ErrorValidation)
	case req.UserID == "":
		return fmt.Errorf("%w: user_id is required", common.ErrorValidation)
	case !(geo.Point{Lat: req.Lat, Lon: req.Lon}).Valid():
		return fmt.Errorf("%w: invalid coordinates (%v, %v)", common.ErrorValidation, req.Lat, req.Lon)
	}
	return nil
}

// candidates loads recent reports other than reportID.
func (s *ReportService) candidates(ctx context.Context, reportID string, now time.Time) ([]scoring.Candidate, error) {
	var since time.Time
	if s.opts.Lookback > 0 {
		since = now.Add(-s.opts.Lookback)
	}
	recent, err := s.repos.Reports().ListSince(ctx, since, s.opts.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("load recent reports: %w", err)
	}

	pool := make([]scoring.Candidate, 0, len(recent))
	for _, r := range recent {
		if r.ID == reportID {
			continue
		}
		c := scoring.Candidate{ReportID: r.ID, Lat: r.Lat, Lon: r.Lon}
		if r.Text != nil {
			c.Text = *r.Text
		}
		pool = append(pool, c)
	}
	return pool, nil
}

// collectSignals runs the text, image and corroboration steps concurrently.
// A decodable image is archived once classified. No repository lock is held
// while they run.
func (s *ReportService) collectSignals(ctx context.Context, req AnalyzeRequest, pool []scoring.Candidate) *signalOutcome {
	out := &signalOutcome{}
	text := ""
	if req.Text != nil {
		text = *req.Text
	}

	var g errgroup.Group

	if text != "" {
		g.Go(func() error {
			out.textLabel, out.textConf, out.textErr = s.text.ClassifyText(ctx, text)
			if out.textErr != nil {
				out.textLabel, out.textConf = "", 0
			}
			return nil
		})
	}

	if len(req.Image) > 0 {
		g.Go(func() error {
			out.imageLabel, out.imageConf, out.imageErr = s.image.ClassifyImage(ctx, req.Image)
			if out.imageErr != nil {
				out.imageLabel, out.imageConf = "", 0
			}
			// Bytes that are not an image are not kept as evidence.
			if s.archive == nil || errors.Is(out.imageErr, common.ErrImageDecode) {
				return nil
			}
			key, err := s.archive.Put(ctx, req.Image)
			if err != nil {
				s.log.Warn(ctx, "image archive failed", "report_id", req.ReportID, "error", err)
				return nil
			}
			out.imageKey = key
			return nil
		})
	}

	g.Go(func() error {
		out.cluster, out.clusterErr = s.corroborator.Strength(ctx, text, req.Lat, req.Lon, pool)
		if out.clusterErr != nil {
			out.cluster = 0
		}
		return nil
	})

	_ = g.Wait()
	return out
}

func (s *ReportService) annotate(ctx context.Context, log logging.Logger, out *signalOutcome) {
	for signal, err := range map[string]error{"text": out.textErr, "image": out.imageErr, "cluster": out.clusterErr} {
		if err == nil {
			continue
		}
		s.metrics.SignalError(ctx, signal)
		log.Warn(ctx, "signal degraded", "signal", signal, "error", err)
	}
}

// store writes r through repo. An upsert never moves a verified report back
// to pending; r.Status is updated to what was kept.
func (s *ReportService) store(ctx context.Context, repo reports.Repository, r *models.Report) error {
	if s.opts.RejectDuplicates {
		if err := repo.Insert(ctx, r); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return fmt.Errorf("report %s: %w", r.ID, err)
			}
			return fmt.Errorf("store report: %w", err)
		}
		return nil
	}

	prev, err := repo.Get(ctx, r.ID)
	switch {
	case err == nil && prev.Status == models.StatusVerified:
		r.Status = models.StatusVerified
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return fmt.Errorf("lookup report: %w", err)
	}
	if err := repo.Put(ctx, r); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

// VerifyReport moves a report to verified and credits its submitter.
// verifiedBy identifies the caller for the audit event and may be empty.
func (s *ReportService) VerifyReport(ctx context.Context, reportID, verifiedBy string) (*VerificationResult, error) {
	if reportID == "" {
		return nil, fmt.Errorf("%w: report_id is required", common.ErrorValidation)
	}

	var (
		report  *models.Report
		user    *models.User
		changed bool
	)
	now := s.now()
	err := s.repos.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		report, changed, err = r.Reports.MarkVerified(ctx, reportID)
		if err != nil {
			return err
		}
		if changed || !s.opts.IdempotentVerify {
			user, err = r.Users.IncrementVerified(ctx, report.UserID, now)
		} else {
			user, err = r.Users.GetOrCreate(ctx, report.UserID, now)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("report %s: %w", reportID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("verify report: %w", err)
	}

	reputation := scoring.Reputation(user, now)
	log := s.log.With("report_id", reportID, "user_id", report.UserID)

	if changed {
		s.publish(ctx, log, events.KindVerified, events.ReportVerified{
			ReportID:       reportID,
			UserID:         report.UserID,
			UserReputation: reputation,
			VerifiedBy:     verifiedBy,
		})
	}
	s.metrics.ReportVerified(ctx, changed)
	log.Info(ctx, "report verified", "changed", changed, "verified_reports", user.VerifiedReportCount)

	return &VerificationResult{
		ReportID:       reportID,
		Status:         common.StatusVerified,
		UserID:         report.UserID,
		UserReputation: reputation,
	}, nil
}

// GetReport returns a stored report. When images are archived the view
// carries a short-lived download link.
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*ReportView, error) {
	r, err := s.repos.Reports().Get(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", reportID, err)
	}
	v := newReportView(r)
	if s.archive != nil && r.ImageKey != "" {
		url, err := s.archive.PresignGet(ctx, r.ImageKey)
		if err != nil {
			s.log.Warn(ctx, "presign image failed", "report_id", reportID, "error", err)
		} else {
			v.ImageURL = url
		}
	}
	return &v, nil
}

// ListUserReports returns a submitter's reports, newest first.
func (s *ReportService) ListUserReports(ctx context.Context, userID string) ([]ReportView, error) {
	rs, err := s.repos.Reports().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reports of %s: %w", userID, err)
	}
	out := make([]ReportView, 0, len(rs))
	for _, r := range rs {
		out = append(out, newReportView(r))
	}
	return out, nil
}

// GetUser returns a submitter's counters and current reputation.
func (s *ReportService) GetUser(ctx context.Context, userID string) (*UserView, error) {
	u, err := s.repos.Users().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	return &UserView{
		UserID:              u.ID,
		CreatedAt:           u.CreatedAt,
		ReportCount:         u.ReportCount,
		VerifiedReportCount: u.VerifiedReportCount,
		IsVerified:          u.IsVerified,
		Reputation:          scoring.Reputation(u, s.now()),
	}, nil
}

func (s *ReportService) publish(ctx context.Context, log logging.Logger, kind string, payload any) {
	if err := s.events.Publish(ctx, kind, payload); err != nil {
		log.Warn(ctx, "publish event failed", "kind", kind, "error", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func nonEmpty(ss ...string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
