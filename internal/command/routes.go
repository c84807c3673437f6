package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/advice"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/service"
)

type memberArgs struct {
	MemberID string `json:"memberId" validate:"required"`
}

type dateArgs struct {
	MemberID string    `json:"memberId" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
}

type receiptArgs struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType"`
	// Data is base64 in JSON.
	Data []byte `json:"data" validate:"required"`
}

type submitArgs struct {
	MemberID       string       `json:"memberId" validate:"required"`
	Days           []string     `json:"days" validate:"required,min=1"`
	Gateway        string       `json:"gateway" validate:"required,oneof=MOMO PAYPAL MANUAL NONE"`
	Amount         int64        `json:"amount" validate:"gte=0"`
	TransactionID  string       `json:"transactionId"`
	CollectionDate *time.Time   `json:"collectionDate"`
	ReceiptRef     string       `json:"receiptRef"`
	Receipt        *receiptArgs `json:"receipt"`
}

type adjudicateArgs struct {
	SubmissionID string `json:"submissionId" validate:"required"`
	Approve      *bool  `json:"approve" validate:"required"`
}

type submissionArgs struct {
	SubmissionID string `json:"submissionId" validate:"required"`
}

type filterArgs struct {
	MemberID string `json:"memberId"`
}

type createPlanArgs struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	TargetDate  time.Time `json:"targetDate" validate:"required"`
}

type planStatusArgs struct {
	PlanID string `json:"planId" validate:"required"`
	Status string `json:"status" validate:"required,oneof=PLANNED COMPLETED"`
}

type planArgs struct {
	PlanID string `json:"planId" validate:"required"`
}

type createAnnouncementArgs struct {
	Title          string `json:"title" validate:"required"`
	Message        string `json:"message" validate:"required"`
	Sender         string `json:"sender"`
	TargetMemberID string `json:"targetMemberId"`
}

type viewerArgs struct {
	ViewerID string `json:"viewerId"`
}

type adviceArgs struct {
	MemberID string `json:"memberId" validate:"required"`
	Locale   string `json:"locale" validate:"omitempty,oneof=en fr rw"`
}

type draftArgs struct {
	Topic  string `json:"topic" validate:"required"`
	Locale string `json:"locale" validate:"omitempty,oneof=en fr rw"`
}

type nextPayoutResult struct {
	MemberID   string     `json:"memberId"`
	NextPayout *time.Time `json:"nextPayout"`
}

type deletedResult struct {
	Deleted string `json:"deleted"`
}

type textResult struct {
	Text string `json:"text"`
}

func (d *Dispatcher) routes() map[string]handler {
	v := d.validate
	s := d.svc

	return map[string]handler{
		"config.get": func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.Config.Get(ctx)
		},
		"config.update": func(ctx context.Context, raw json.RawMessage) (any, error) {
			patch, err := bind[models.ConfigPatch](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Config.Update(ctx, *patch)
		},

		"members.list": func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.Members.List(ctx)
		},
		"members.get": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *memberArgs) { defaultToCaller(ctx, &a.MemberID) })
			if err != nil {
				return nil, err
			}
			return s.Members.Get(ctx, a.MemberID)
		},
		"members.selectDate": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *dateArgs) { defaultToCaller(ctx, &a.MemberID) })
			if err != nil {
				return nil, err
			}
			return s.Members.SelectDate(ctx, a.MemberID, a.Date)
		},
		"members.deselectDate": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *dateArgs) { defaultToCaller(ctx, &a.MemberID) })
			if err != nil {
				return nil, err
			}
			return s.Members.DeselectDate(ctx, a.MemberID, a.Date)
		},
		"members.commitDates": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *memberArgs) { defaultToCaller(ctx, &a.MemberID) })
			if err != nil {
				return nil, err
			}
			return s.Members.CommitDates(ctx, a.MemberID)
		},
		"members.unlockDates": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[memberArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Members.UnlockDates(ctx, a.MemberID)
		},
		"members.nextPayout": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *memberArgs) { defaultToCaller(ctx, &a.MemberID) })
			if err != nil {
				return nil, err
			}
			next, err := s.Members.NextPayout(ctx, a.MemberID)
			if err != nil {
				return nil, err
			}
			return nextPayoutResult{MemberID: a.MemberID, NextPayout: next}, nil
		},

		"collections.submit": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *submitArgs) { defaultToCaller(ctx, &a.MemberID) })
			if err != nil {
				return nil, err
			}
			req := service.SubmitRequest{
				MemberID:       a.MemberID,
				Days:           a.Days,
				Gateway:        models.Gateway(a.Gateway),
				Amount:         models.Money(a.Amount),
				TransactionID:  a.TransactionID,
				CollectionDate: a.CollectionDate,
				ReceiptRef:     a.ReceiptRef,
			}
			if a.Receipt != nil {
				req.Receipt = &service.ReceiptUpload{
					Filename:    a.Receipt.Filename,
					ContentType: a.Receipt.ContentType,
					Data:        a.Receipt.Data,
				}
			}
			return s.Collections.Submit(ctx, req)
		},
		"collections.adjudicate": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[adjudicateArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Collections.Adjudicate(ctx, a.SubmissionID, *a.Approve)
		},
		"collections.unlock": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[submissionArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Collections.Unlock(ctx, a.SubmissionID)
		},
		"collections.get": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[submissionArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Collections.Get(ctx, a.SubmissionID)
		},
		"collections.list": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[filterArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Collections.List(ctx, a.MemberID)
		},

		"ledger.list": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[filterArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Ledger.List(ctx, a.MemberID)
		},
		"ledger.totals": func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.Ledger.Totals(ctx)
		},

		"plans.create": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[createPlanArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Plans.Create(ctx, a.Title, a.Description, a.TargetDate)
		},
		"plans.setStatus": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[planStatusArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return s.Plans.SetStatus(ctx, a.PlanID, models.PlanStatus(a.Status))
		},
		"plans.delete": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[planArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			if err := s.Plans.Delete(ctx, a.PlanID); err != nil {
				return nil, err
			}
			return deletedResult{Deleted: a.PlanID}, nil
		},
		"plans.list": func(ctx context.Context, _ json.RawMessage) (any, error) {
			return s.Plans.List(ctx)
		},

		"announcements.create": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[createAnnouncementArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			if a.Sender == "" {
				a.Sender = d.callerName(ctx)
			}
			return s.Announcements.Create(ctx, a.Title, a.Message, a.Sender, a.TargetMemberID)
		},
		"announcements.list": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *viewerArgs) { defaultToCaller(ctx, &a.ViewerID) })
			if err != nil {
				return nil, err
			}
			return s.Announcements.List(ctx, a.ViewerID)
		},
		"alerts.list": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *viewerArgs) { defaultToCaller(ctx, &a.ViewerID) })
			if err != nil {
				return nil, err
			}
			return s.Alerts.List(ctx, a.ViewerID)
		},

		"advice.generate": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind(v, raw, func(a *adviceArgs) { defaultToCaller(ctx, &a.MemberID) })
			if err != nil {
				return nil, err
			}
			text, err := s.Advice.Advice(ctx, a.MemberID, advice.ParseLocale(a.Locale))
			if err != nil {
				return nil, err
			}
			return textResult{Text: text}, nil
		},
		"advice.draft": func(ctx context.Context, raw json.RawMessage) (any, error) {
			a, err := bind[draftArgs](v, raw, nil)
			if err != nil {
				return nil, err
			}
			return textResult{Text: s.Advice.DraftAnnouncement(ctx, a.Topic, advice.ParseLocale(a.Locale))}, nil
		},
	}
}

// callerName returns the caller's member name, or "" when unknown.
func (d *Dispatcher) callerName(ctx context.Context) string {
	id := ""
	defaultToCaller(ctx, &id)
	if id == "" {
		return ""
	}
	member, err := d.svc.Members.Get(ctx, id)
	if err != nil {
		return ""
	}
	return member.Name
}
