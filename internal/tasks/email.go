package tasks

import (
	"commerceq/internal/domain"
	"commerceq/internal/mailer"
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

type recipient struct {
	email string
	data  map[string]any
}

// sendEmail renders a stored template per recipient and delivers it.
// One recipient's delivery failure is recorded, not fatal.
func (d Deps) sendEmail(ctx context.Context, t domain.Task) (map[string]any, error) {
	templateID, storeID := t.StringArg("template_id"), t.StringArg("store_id")
	if templateID == "" || storeID == "" {
		return failure(errors.New("template_id and store_id are required")), nil
	}

	tpl, err := d.Repo.EmailTemplateByID(ctx, templateID)
	if err != nil {
		return failuref("email template not found: %v", err), nil
	}
	store, err := d.Repo.StoreByID(ctx, storeID)
	if err != nil {
		return failuref("store not found: %v", err), nil
	}

	base := map[string]any{
		"store_name": store.Name,
		"store_url":  store.URL,
	}
	for k, v := range t.MapArg("context") {
		base[k] = v
	}

	var recipients []recipient
	if ids := t.StringSliceArg("customer_ids"); len(ids) > 0 {
		customers, err := d.Repo.CustomersByIDs(ctx, store.ID, ids)
		if err != nil {
			return failuref("load customers: %v", err), nil
		}
		for _, c := range customers {
			recipients = append(recipients, customerRecipient(c, base))
		}
	}
	for _, addr := range t.StringSliceArg("email_addresses") {
		data := cloneData(base)
		data["customer_name"] = "Customer"
		data["customer_email"] = addr
		recipients = append(recipients, recipient{email: addr, data: data})
	}

	return d.deliverAll(ctx, tpl, recipients), nil
}

// sendNewsletter delivers a template to every active customer of the
// store who opted into marketing.
func (d Deps) sendNewsletter(ctx context.Context, t domain.Task) (map[string]any, error) {
	templateID, storeID := t.StringArg("template_id"), t.StringArg("store_id")
	if templateID == "" || storeID == "" {
		return failure(errors.New("template_id and store_id are required")), nil
	}

	tpl, err := d.Repo.EmailTemplateByID(ctx, templateID)
	if err != nil {
		return failuref("email template not found: %v", err), nil
	}
	store, err := d.Repo.StoreByID(ctx, storeID)
	if err != nil {
		return failuref("store not found: %v", err), nil
	}

	customers, err := d.Repo.MarketingCustomers(ctx, store.ID)
	if err != nil {
		return failuref("load customers: %v", err), nil
	}

	base := map[string]any{
		"store_name": store.Name,
		"store_url":  store.URL,
	}
	recipients := make([]recipient, 0, len(customers))
	for _, c := range customers {
		recipients = append(recipients, customerRecipient(c, base))
	}

	return d.deliverAll(ctx, tpl, recipients), nil
}

func (d Deps) deliverAll(ctx context.Context, tpl *domain.EmailTemplate, recipients []recipient) map[string]any {
	results := make([]map[string]any, 0, len(recipients))
	sent := 0
	for _, r := range recipients {
		ok := d.deliverOne(ctx, tpl, r)
		if ok {
			sent++
		}
		results = append(results, map[string]any{"email": r.email, "success": ok})
	}

	return map[string]any{
		"success": true,
		"total":   len(recipients),
		"sent":    sent,
		"failed":  len(recipients) - sent,
		"results": results,
	}
}

func (d Deps) deliverOne(ctx context.Context, tpl *domain.EmailTemplate, r recipient) bool {
	subject, err := mailer.Render(tpl.Subject, r.data)
	if err != nil {
		log.Ctx(ctx).Err(err).Str("email", r.email).Msg("render subject")
		return false
	}
	body, err := mailer.Render(tpl.Body, r.data)
	if err != nil {
		log.Ctx(ctx).Err(err).Str("email", r.email).Msg("render body")
		return false
	}
	if err := d.Mailer.Send(ctx, mailer.Message{To: r.email, Subject: subject, Body: body}); err != nil {
		log.Ctx(ctx).Err(err).Str("email", r.email).Msg("send email")
		return false
	}
	return true
}

func customerRecipient(c domain.Customer, base map[string]any) recipient {
	data := cloneData(base)
	data["customer_name"] = c.FullName()
	data["customer_email"] = c.Email
	return recipient{email: c.Email, data: data}
}

func cloneData(base map[string]any) map[string]any {
	out := make(map[string]any, len(base)+2)
	for k, v := range base {
		out[k] = v
	}
	return out
}
