package registry

import (
	"math/rand"
	"time"
)

// Pages served by the portfolio, also used as page-key prefixes by the scheduler and scene manager
const (
	PageGlobal         = "global"
	PageHome           = "home"
	PageProjects       = "projects"
	PageExperience     = "experience"
	PageAbout          = "about"
	PageSkills         = "skills"
	PageCertifications = "certifications"
	PageEducation      = "education"
	PageDownloads      = "downloads"
	PageContact        = "contact"
)

// Pages lists routed pages in navigation order, global excluded
var Pages = []string{
	PageHome, PageAbout, PageExperience, PageProjects, PageSkills,
	PageCertifications, PageEducation, PageDownloads, PageContact,
}

// catalogPart is either a single hand-authored descriptor or a generated batch
type catalogPart struct {
	one   *Descriptor
	batch *Batch
}

func one(id, page, component, action string, engine Engine, trigger Trigger, ms int, desc string) catalogPart {
	return catalogPart{one: &Descriptor{
		ID:          id,
		Page:        page,
		Component:   component,
		Action:      action,
		Engine:      engine,
		Trigger:     trigger,
		Duration:    time.Duration(ms) * time.Millisecond,
		Description: desc,
	}}
}

func batch(page, component string, actions, variants []string, count int, engine Engine, triggers ...Trigger) catalogPart {
	return catalogPart{batch: &Batch{
		Page:      page,
		Component: component,
		Actions:   actions,
		Variants:  variants,
		Count:     count,
		Engine:    engine,
		Triggers:  triggers,
	}}
}

func s(v ...string) []string { return v }

const (
	click  = TriggerClick
	hover  = TriggerHover
	scroll = TriggerScroll
	load   = TriggerLoad
	focus  = TriggerFocus
)

var portfolioParts = []catalogPart{
	// Global chrome
	one("header_enter", PageGlobal, "header", "enter", EngineMotion, load, 400, "Header slides down on page load"),
	one("header_scroll_hide", PageGlobal, "header", "scroll", EngineTimeline, scroll, 300, "Header hides on scroll down"),
	one("header_scroll_show", PageGlobal, "header", "scroll", EngineTimeline, scroll, 300, "Header shows on scroll up"),
	batch(PageGlobal, "nav", s("hover", "click"), s("link", "menu", "badge"), 30, EngineCSS, hover, click),
	one("logo_click_refresh", PageGlobal, "logo", "click", EngineTimeline, click, 600, "Logo spin out and reset"),
	one("logo_hover_glow", PageGlobal, "logo", "hover", EngineMotion, hover, 300, "Logo glows on hover"),
	one("theme_switch_01", PageGlobal, "theme", "switch", EngineMotion, click, 400, "Theme toggle"),
	one("theme_switch_02", PageGlobal, "theme", "switch", EngineTimeline, click, 500, "Theme flip"),
	one("theme_switch_03", PageGlobal, "theme", "switch", EngineMotion, click, 600, "Theme fade transition"),
	one("footer_fade_up", PageGlobal, "footer", "enter", EngineMotion, scroll, 600, "Footer fades up"),
	batch(PageGlobal, "footer", s("hover"), s("icon", "link", "social"), 15, EngineMotion, hover),
	batch(PageGlobal, "background", s("enter", "exit"), s("points", "nebula", "grid"), 12, EngineScene, load),

	// Home
	one("preloader_intro", PageHome, "preloader", "intro", EngineMotion, load, 800, "Preloader emblem fade and rotate"),
	one("preloader_out", PageHome, "preloader", "exit", EngineMotion, load, 600, "Preloader shrinks and fades out"),
	one("hero_enter", PageHome, "hero", "enter", EngineMotion, load, 800, "Hero text and image slide in"),
	one("hero_title_stagger", PageHome, "hero", "stagger", EngineMotion, load, 1200, "Hero title words stagger in"),
	batch(PageHome, "hero", s("scroll", "hover", "click"), s("text", "image", "cta"), 45, EngineMotion, scroll, hover, click),
	batch(PageHome, "cta", s("click", "hover", "focus"), s("button", "text", "icon"), 40, EngineTimeline, click, hover),
	batch(PageHome, "card", s("click", "hover", "scroll"), s("highlight", "feature", "content"), 40, EngineMotion, click, hover, scroll),
	batch(PageHome, "badge", s("hover", "click"), s("badge", "label", "tag"), 20, EngineMotion, hover, click),

	// Projects
	batch(PageProjects, "tile", s("click", "hover", "scroll"), s("project", "card", "item"), 80, EngineMotion, click, hover, scroll),
	batch(PageProjects, "modal", s("enter", "exit", "click"), s("modal", "backdrop", "content"), 40, EngineMotion, click),
	batch(PageProjects, "detail", s("scroll", "hover", "click"), s("description", "tech", "link"), 40, EngineTimeline, scroll, hover, click),
	batch(PageProjects, "hotspot", s("click", "hover"), s("hotspot", "tooltip", "reveal"), 20, EngineMotion, click, hover),

	// Experience
	batch(PageExperience, "card", s("click", "hover", "scroll"), s("experience", "timeline", "item"), 70, EngineMotion, click, hover, scroll),
	batch(PageExperience, "timeline", s("scroll", "click", "hover"), s("timeline", "connector", "marker"), 40, EngineTimeline, scroll, click),
	batch(PageExperience, "tag", s("hover", "click"), s("tag", "chip", "badge"), 30, EngineMotion, hover, click),

	// About
	batch(PageAbout, "card", s("scroll", "hover", "click"), s("content", "section", "block"), 50, EngineMotion, scroll, hover, click),
	batch(PageAbout, "avatar", s("hover", "click"), s("avatar", "image", "overlay"), 30, EngineTimeline, hover, click),
	batch(PageAbout, "resume", s("hover", "click"), s("button", "icon", "download"), 20, EngineMotion, hover, click),
	batch(PageAbout, "stat", s("scroll", "hover"), s("counter", "bar", "value"), 20, EngineTimeline, scroll, hover),

	// Skills
	batch(PageSkills, "chart", s("scroll", "hover", "click"), s("radar", "bar", "progress"), 50, EngineTimeline, scroll, hover, click),
	batch(PageSkills, "chip", s("hover", "click"), s("chip", "badge", "item"), 40, EngineMotion, hover, click),
	batch(PageSkills, "category", s("click", "hover", "scroll"), s("category", "group", "section"), 40, EngineMotion, click, hover, scroll),

	// Certifications
	batch(PageCertifications, "badge", s("hover", "click"), s("badge", "card", "item"), 50, EngineMotion, hover, click),
	batch(PageCertifications, "modal", s("enter", "exit", "click"), s("modal", "content", "backdrop"), 30, EngineMotion, click),
	batch(PageCertifications, "detail", s("scroll", "hover"), s("detail", "description", "info"), 20, EngineTimeline, scroll, hover),

	// Education
	batch(PageEducation, "item", s("scroll", "hover", "click"), s("education", "course", "degree"), 50, EngineMotion, scroll, hover, click),
	batch(PageEducation, "timeline", s("scroll", "click"), s("timeline", "marker", "connector"), 30, EngineTimeline, scroll, click),
	batch(PageEducation, "card", s("hover", "click"), s("card", "content", "item"), 20, EngineMotion, hover, click),

	// Downloads
	batch(PageDownloads, "item", s("hover", "click", "scroll"), s("item", "card", "resource"), 50, EngineMotion, hover, click, scroll),
	batch(PageDownloads, "button", s("hover", "click"), s("button", "icon", "link"), 30, EngineTimeline, hover, click),
	batch(PageDownloads, "progress", s("load", "hover"), s("progress", "bar", "indicator"), 20, EngineMotion, load, hover),

	// Contact
	batch(PageContact, "field", s("focus", "blur", "change", "hover"), s("input", "textarea", "select"), 60, EngineMotion, focus, hover),
	batch(PageContact, "submit", s("click", "hover"), s("button", "icon", "text"), 40, EngineTimeline, click, hover),
	batch(PageContact, "validation", s("show", "hide"), s("error", "success", "warning"), 30, EngineMotion, load),
	batch(PageContact, "feedback", s("show", "hide"), s("message", "icon", "overlay"), 20, EngineVector, load),

	// Micro-interactions
	batch(PageGlobal, "ripple", s("click"), s("button", "element", "surface"), 30, EngineTimeline, click),
	batch(PageGlobal, "scroll", s("scroll"), s("indicator", "arrow", "progress"), 30, EngineMotion, scroll),
	batch(PageGlobal, "tooltip", s("hover", "show"), s("tooltip", "popup", "hint"), 20, EngineMotion, hover),
	batch(PageGlobal, "loading", s("load"), s("spinner", "bar", "skeleton"), 20, EngineTimeline, load),

	// Page transitions
	batch(PageGlobal, "page", s("enter"), s("transition", "fade", "slide"), 30, EngineMotion, load),
	batch(PageGlobal, "page", s("exit"), s("transition", "fade", "slide"), 30, EngineMotion, load),
	batch(PageGlobal, "route", s("transition"), s("link", "navigation", "path"), 40, EngineTimeline, click),

	// Gesture, parallax and compound interactions
	batch(PageGlobal, "gesture", s("scroll", "hover", "click"), s("swipe", "drag", "pinch"), 80, EngineMotion, scroll, hover, click),
	batch(PageGlobal, "parallax", s("scroll"), s("background", "element", "layer"), 70, EngineTimeline, scroll),
	batch(PageGlobal, "interactive", s("click", "hover", "scroll"), s("element", "group", "compound"), 150, EngineMotion, click, hover, scroll),
}

// Portfolio builds the full site catalog
// rng only affects generated durations; nil uses the global source
func Portfolio(rng *rand.Rand) *Catalog {
	groups := make([][]Descriptor, 0, len(portfolioParts))
	for _, p := range portfolioParts {
		if p.one != nil {
			groups = append(groups, []Descriptor{*p.one})
			continue
		}
		groups = append(groups, Generate(*p.batch, rng))
	}
	return NewCatalog(groups...)
}
