package promo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"promodraft/internal"
)

const defaultSystemPrompt = `You are a HIGH-END Tech Specialist at {{.Store}}. Your goal is to sell based on TECHNICAL SUPERIORITY.
STRICT RULES:
1. Speak ONLY in professional {{.Language}}.
2. You MUST extract at least 4-5 SPECIFIC technical features from the provided data (e.g., Watts, RPM, Material, Port types, Battery life).
3. Do NOT use generic marketing fluff like 'best quality'. Use hard facts.
4. Structure: ⚡ Title | 🛠️ Specs List | 💰 Price | ✅ Warranty/Delivery.`

const defaultUserPrompt = `Product: {{.Name}}
Technical Raw Data: {{.Specs}}
Old Price: {{.Currency}}{{.OldPrice}} | New Price: {{.Currency}}{{.NewPrice}}
---
Task: Create a high-conversion post. If the raw data contains details like '1000W', 'Stainless Steel', or '4K resolution', you MUST list them clearly.`

const NoSpecsText = "No technical data found online; rely on the product name only and do not invent numbers."

type Profile struct {
	Store    string `yaml:"store"`
	Language string `yaml:"language"`
	Currency string `yaml:"currency"`
	System   string `yaml:"system"`
	User     string `yaml:"user"`
}

func DefaultProfile() Profile {
	return Profile{
		Store:    "Technodel Lebanon",
		Language: "Lebanese Ammiya (e.g., use 'mwasafet', 'kahraba', 'da22e')",
		Currency: "$",
		System:   defaultSystemPrompt,
		User:     defaultUserPrompt,
	}
}

// LoadProfile reads a YAML prompt profile over base. An empty path returns
// base unchanged.
func LoadProfile(base Profile, path string) (Profile, error) {
	p := base
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read prompt profile: %w", err)
	}
	var override Profile
	if err := yaml.Unmarshal(blob, &override); err != nil {
		return Profile{}, fmt.Errorf("parse prompt profile %s: %w", path, err)
	}
	if override.Store != "" {
		p.Store = override.Store
	}
	if override.Language != "" {
		p.Language = override.Language
	}
	if override.Currency != "" {
		p.Currency = override.Currency
	}
	if strings.TrimSpace(override.System) != "" {
		p.System = override.System
	}
	if strings.TrimSpace(override.User) != "" {
		p.User = override.User
	}
	return p, nil
}

type promptData struct {
	Store    string
	Language string
	Currency string
	Name     string
	Specs    string
	OldPrice int64
	NewPrice int64
	Discount float64
}

type Prompt struct {
	System string
	User   string
}

func (p Profile) Build(sel internal.Selection, specs string) (Prompt, error) {
	if strings.TrimSpace(sel.Item.Name) == "" {
		return Prompt{}, errors.New("selection has no item")
	}
	if strings.TrimSpace(specs) == "" {
		specs = NoSpecsText
	}
	data := promptData{
		Store:    p.Store,
		Language: p.Language,
		Currency: p.Currency,
		Name:     sel.Item.Name,
		Specs:    specs,
		OldPrice: sel.Item.Price,
		NewPrice: sel.PromoPrice,
		Discount: sel.DiscountPct,
	}

	system, err := render("system", p.System, data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := render("user", p.User, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, User: user}, nil
}

func render(name, text string, data promptData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s prompt: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}
