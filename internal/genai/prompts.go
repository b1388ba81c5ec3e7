package genai

import (
	"context"
	"fmt"
	"strings"
)

// Higher-level generation calls used by the services. Each one is a thin
// prompt over GenerateText/GenerateImage and inherits the retry behavior.

// MentorAcceptance writes the delayed acceptance message attached to a
// mentorship request when the simulated external actor responds.
func (c *Client) MentorAcceptance(ctx context.Context, mentorName, mentorRole string, interests []string) (string, error) {
	prompt := fmt.Sprintf(
		"Mentor: %s, Role: %s\nStudent Interests: %s\n\nTask: Write a welcoming response as this mentor, accepting a request.",
		mentorName, mentorRole, strings.Join(interests, ", "))

	resp, err := c.GenerateText(ctx,
		"You are an institutional mentor. Your tone is professional and encouraging.",
		prompt, false)
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "I'm excited to support your journey within our innovation network.", nil
	}
	return resp.Text, nil
}

// VentureAnalysis analyzes a startup concept.
func (c *Client) VentureAnalysis(ctx context.Context, concept string) (string, error) {
	resp, err := c.GenerateText(ctx,
		"You are a professional venture capitalist. Focus on Money, Market, Motivation, Manpower, Mentor, Method, Planning, and Product.",
		fmt.Sprintf("Analyze the following startup idea: %s", concept), false)
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "Analysis unavailable.", nil
	}
	return resp.Text, nil
}

// VentureVisual generates a logo concept for the venture, returned as a
// data URI or empty when the model produced none.
func (c *Client) VentureVisual(ctx context.Context, concept string) (string, error) {
	prompt := fmt.Sprintf(
		"A professional, minimal, high-tech logo for an innovation venture based on this concept: %s. Solid background, sharp edges, institutional aesthetic.",
		concept)
	return c.GenerateImage(ctx, prompt)
}

// ImproveExperience rewrites a draft experience description.
func (c *Client) ImproveExperience(ctx context.Context, role, company, description string) (string, error) {
	prompt := fmt.Sprintf(
		"Role: %s\nCompany: %s\nDraft Description: %s\n\nTask: Rewrite this professional experience to be high-impact. Use action verbs.",
		role, company, description)

	resp, err := c.GenerateText(ctx,
		"You are a career coach. Transform descriptions into high-impact professional highlights.",
		prompt, false)
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return description, nil
	}
	return resp.Text, nil
}

// SearchCourses finds current courses and certifications for a topic using
// web grounding.
func (c *Client) SearchCourses(ctx context.Context, topic string) (*AIResponse, error) {
	prompt := fmt.Sprintf(
		"Find high-quality upcoming professional courses and certifications for: %s. Search through major course providers and top university programs.",
		topic)
	return c.GenerateText(ctx, "", prompt, true)
}

// FindNearbyEvents discovers upcoming ecosystem events, optionally anchored
// to coordinates.
func (c *Client) FindNearbyEvents(ctx context.Context, query string, lat, lng *float64) (*AIResponse, error) {
	location := " in the institutional hub region"
	if lat != nil && lng != nil {
		location = fmt.Sprintf(" near coordinates %f, %f", *lat, *lng)
	}
	prompt := fmt.Sprintf(
		"Find upcoming tech, AI, startup, and hackathon events%s from Meetup.com, Eventbrite.com, and Luma (lu.ma). Focus on: %s. For each event, find the Title, Date, Venue/Location, and official URL. Do not invent events.",
		location, query)
	return c.GenerateText(ctx, "", prompt, true)
}

// MentorMatch picks the best mentor for the student's interests.
func (c *Client) MentorMatch(ctx context.Context, interests []string, mentorSummaries []string) (string, error) {
	prompt := fmt.Sprintf(
		"Student Interests: %s\n\nAvailable Mentors:\n%s\n\nTask: Identify the best mentor for this student and explain why in 2 sentences.",
		strings.Join(interests, ", "), strings.Join(mentorSummaries, "\n"))

	resp, err := c.GenerateText(ctx,
		"You are an institutional matching engine. Match students with mentors based on strategic career alignment.",
		prompt, false)
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "No direct synergy match found at this time.", nil
	}
	return resp.Text, nil
}
