// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package agent

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mattermost/agent-resolver/pkg/command"
)

const temperature = 0.2

type Agent struct {
	impl agentImplementation
	opts *Options
}

type Options struct {
	Model         string
	APIKey        string
	BaseURL       string  // Overrides the API endpoint, mostly for proxies
	MaxBudget     float64 // Cost limit per run in USD
	MaxIterations int     // Turns allowed to produce a valid result
	MaxTokens     int64
	Pricing       []Price // Overrides the built in price table
}

// Task is the work sent to the agent
type Task struct {
	Command          command.Command
	ProblemStatement string
}

// Result is what the agent returns for a task
type Result struct {
	Success        bool     `json:"success"`
	Summary        string   `json:"summary"`
	Explanation    string   `json:"explanation,omitempty"`
	Patch          string   `json:"patch,omitempty"`
	TestPlan       string   `json:"test_plan,omitempty"`
	ReviewComments []string `json:"review_comments,omitempty"`

	Cost       float64 `json:"cost"`
	Iterations int     `json:"iterations"`
	Model      string  `json:"model"`
}

type agentImplementation interface {
	createMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// New returns an agent talking to the Anthropic Messages API
func New(opts *Options) *Agent {
	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &Agent{
		impl: &defaultAgentImplementation{client: anthropic.NewClient(clientOpts...)},
		opts: opts,
	}
}

// Options returns the agent options
func (a *Agent) Options() *Options {
	return a.opts
}

// Run sends the task to the model until it returns a result that parses,
// the iterations run out or the cost limit is exceeded.
func (a *Agent) Run(ctx context.Context, task *Task) (*Result, error) {
	if a.opts.MaxBudget <= 0 {
		return nil, errors.Wrapf(ErrBudgetExceeded, "cost limit is $%.2f", a.opts.MaxBudget)
	}
	if a.opts.MaxIterations < 1 {
		return nil, errors.New("agent needs at least one iteration")
	}
	if strings.TrimSpace(task.ProblemStatement) == "" {
		return nil, errors.New("problem statement is empty")
	}

	b := newBudget(a.opts.MaxBudget, priceFor(a.opts.Model, a.opts.Pricing))
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.opts.Model),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt(task.Command)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(task.ProblemStatement)),
		},
	}

	var lastErr error
	for i := 1; i <= a.opts.MaxIterations; i++ {
		logrus.Infof("Agent iteration %d/%d for %s (model %s)", i, a.opts.MaxIterations, task.Command, a.opts.Model)
		msg, err := a.impl.createMessage(ctx, params)
		if err != nil {
			return nil, errors.Wrapf(err, "calling model in iteration %d", i)
		}

		if err := b.charge(msg.Usage.InputTokens, msg.Usage.OutputTokens); err != nil {
			return nil, err
		}
		logrus.Infof(
			"Iteration %d used %d input and %d output tokens, spent $%.4f of $%.2f",
			i, msg.Usage.InputTokens, msg.Usage.OutputTokens, b.spent, b.limit,
		)

		text := messageText(msg)
		res, err := parseResult(text)
		if err == nil {
			res.Cost = b.spent
			res.Iterations = i
			res.Model = a.opts.Model
			return res, nil
		}

		lastErr = err
		logrus.Warnf("Could not parse agent response: %v", err)
		params.Messages = append(params.Messages,
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)),
			anthropic.NewUserMessage(anthropic.NewTextBlock(correctionPrompt(err))),
		)
	}
	return nil, errors.Wrapf(lastErr, "no valid result after %d iterations", a.opts.MaxIterations)
}

// messageText joins the text blocks of a response
func messageText(msg *anthropic.Message) string {
	parts := []string{}
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

type defaultAgentImplementation struct {
	client anthropic.Client
}

func (di *defaultAgentImplementation) createMessage(
	ctx context.Context, params anthropic.MessageNewParams,
) (*anthropic.Message, error) {
	msg, err := di.client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "creating message")
	}
	return msg, nil
}
