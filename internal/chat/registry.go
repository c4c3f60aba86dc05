package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/mail"
	"github.com/alexanderramin/taskpilot/internal/service"
)

// Registered tool names. The model sees these verbatim.
const (
	ToolSendEmail          = "send_email_outlook"
	ToolFetchEmails        = "fetch_emails"
	ToolBookMeeting        = "book_meeting"
	ToolGetWorkItems       = "get_work_items"
	ToolGetRiskItems       = "get_risk_items"
	ToolGetUsers           = "get_users"
	ToolGetPriorityScores  = "get_priority_scores"
	ToolUpdateWorkItemUser = "update_work_item_assignment"
)

// ToolDeps are the services the default tools call into.
type ToolDeps struct {
	WorkItems service.WorkItemService
	Workload  service.WorkloadService
	Risk      service.RiskService
	Email     service.EmailService
}

type sendEmailArgs struct {
	Subject      string   `json:"subject"`
	Body         string   `json:"body"`
	ToRecipients []string `json:"to_recipients"`
}

type bookMeetingArgs struct {
	Subject   string   `json:"subject"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Attendees []string `json:"attendees"`
	Location  string   `json:"location,omitempty"`
	Body      string   `json:"body,omitempty"`
}

type updateAssignmentArgs struct {
	WorkItemID int    `json:"work_item_id"`
	UserEmail  string `json:"user_email"`
}

// NewDefaultToolset wires the eight project-manager tools.
func NewDefaultToolset(deps ToolDeps) (*Toolset, error) {
	return NewToolset(
		Tool{
			Name:        ToolSendEmail,
			Description: "Prepare an Outlook email and return a compose link. Nothing is sent until the user opens the link.",
			Parameters: objectSchema(map[string]any{
				"subject":       stringProp("Email subject line"),
				"body":          stringProp("Plain-text email body"),
				"to_recipients": stringListProp("Recipient email addresses"),
			}, "subject", "body", "to_recipients"),
			Run: func(ctx context.Context, raw string) (any, error) {
				args, err := decodeArgs[sendEmailArgs](raw)
				if err != nil {
					return nil, err
				}
				link, err := deps.Email.CreateDraft(args.Subject, args.Body, args.ToRecipients)
				if err != nil {
					return nil, err
				}
				return map[string]string{"draft_link": link}, nil
			},
		},
		Tool{
			Name:        ToolFetchEmails,
			Description: "List recent messages from the user's inbox.",
			Run: withoutArgs(func(ctx context.Context) (any, error) {
				return deps.Email.RecentEmails(ctx)
			}),
		},
		Tool{
			Name:        ToolBookMeeting,
			Description: "Create a calendar event and invite the attendees. Times are ISO 8601; times without an offset are UTC.",
			Parameters: objectSchema(map[string]any{
				"subject":    stringProp("Meeting title"),
				"start_time": stringProp("Start time, ISO 8601"),
				"end_time":   stringProp("End time, ISO 8601"),
				"attendees":  stringListProp("Attendee email addresses"),
				"location":   stringProp("Optional meeting location"),
				"body":       stringProp("Optional agenda or description"),
			}, "subject", "start_time", "end_time", "attendees"),
			Run: func(ctx context.Context, raw string) (any, error) {
				args, err := decodeArgs[bookMeetingArgs](raw)
				if err != nil {
					return nil, err
				}
				start, err := mail.ParseEventTime(args.StartTime)
				if err != nil {
					return nil, fmt.Errorf("%w: start_time: %v", ErrInvalidArguments, err)
				}
				end, err := mail.ParseEventTime(args.EndTime)
				if err != nil {
					return nil, fmt.Errorf("%w: end_time: %v", ErrInvalidArguments, err)
				}
				return deps.Email.BookMeeting(ctx, mail.EventRequest{
					Subject:   args.Subject,
					Start:     start,
					End:       end,
					Attendees: args.Attendees,
					Location:  args.Location,
					Body:      args.Body,
				})
			},
		},
		Tool{
			Name:        ToolGetWorkItems,
			Description: "List every work item of the current project with its priority score.",
			Run: withoutArgs(func(ctx context.Context) (any, error) {
				return deps.WorkItems.All(ctx)
			}),
		},
		Tool{
			Name:        ToolGetRiskItems,
			Description: "List the work items most at risk: those due within a week plus those scoring above the mean, highest score first.",
			Run: withoutArgs(func(ctx context.Context) (any, error) {
				return deps.Risk.RiskItems(ctx)
			}),
		},
		Tool{
			Name:        ToolGetUsers,
			Description: "List project users with the number of work items assigned to each.",
			Run: withoutArgs(func(ctx context.Context) (any, error) {
				return deps.Workload.TaskCounts(ctx)
			}),
		},
		Tool{
			Name:        ToolGetPriorityScores,
			Description: "Sum the priority scores of each user's assigned work items.",
			Run: withoutArgs(func(ctx context.Context) (any, error) {
				return deps.Workload.TotalPriorityByUser(ctx)
			}),
		},
		Tool{
			Name:        ToolUpdateWorkItemUser,
			Description: "Assign a work item to a user by email. This changes the tracker.",
			Parameters: objectSchema(map[string]any{
				"work_item_id": map[string]any{"type": "integer", "description": "Work item id"},
				"user_email":   stringProp("Email of the new assignee"),
			}, "work_item_id", "user_email"),
			Run: func(ctx context.Context, raw string) (any, error) {
				args, err := decodeArgs[updateAssignmentArgs](raw)
				if err != nil {
					return nil, err
				}
				if strings.TrimSpace(args.UserEmail) == "" {
					return nil, fmt.Errorf("%w: user_email is required", ErrInvalidArguments)
				}
				return deps.WorkItems.Assign(ctx, args.WorkItemID, args.UserEmail)
			},
		},
	)
}

// withoutArgs adapts a parameterless tool. Its arguments must still decode
// as an empty object.
func withoutArgs(run func(ctx context.Context) (any, error)) func(context.Context, string) (any, error) {
	return func(ctx context.Context, raw string) (any, error) {
		if _, err := decodeArgs[struct{}](raw); err != nil {
			return nil, err
		}
		return run(ctx)
	}
}
