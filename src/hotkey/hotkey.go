package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers combo (for example "Ctrl+Alt+A") with the global keyboard
// hook and calls fn from the hook goroutine every time the full combination
// goes down. It returns once the hook is installed.
func Listen(combo string, fn func()) (stop func(), err error) {
	c, err := Parse(combo)
	if err != nil {
		return nil, err
	}
	log.Printf("HOTKEY: listening for %s", c)

	events := gohook.Start()
	if events == nil {
		return nil, fmt.Errorf("failed to start keyboard hook for %s", combo)
	}

	var once sync.Once
	stop = func() { once.Do(gohook.End) }

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("HOTKEY: panic in hook goroutine: %v", r)
			}
		}()
		for ev := range events {
			switch ev.Kind {
			case gohook.KeyDown:
				if c.Press(ev.Rawcode) {
					log.Printf("HOTKEY: %s triggered", c)
					if fn != nil {
						fn()
					}
				}
			case gohook.KeyUp:
				c.Release(ev.Rawcode)
			}
		}
		log.Printf("HOTKEY: event channel closed")
	}()
	return stop, nil
}

type key struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// Combo tracks which keys of a hotkey combination are currently held.
type Combo struct {
	mu   sync.Mutex
	spec string
	keys []key
}

// Parse builds a Combo from a "+"-separated key list. Key names are case
// insensitive; win, cmd and super all name the OS key.
func Parse(spec string) (*Combo, error) {
	names := parseHotkey(spec)
	if len(names) == 0 {
		return nil, fmt.Errorf("empty hotkey %q", spec)
	}
	c := &Combo{spec: spec}
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if codes == nil {
			return nil, fmt.Errorf("unknown key %q in hotkey %q", name, spec)
		}
		c.keys = append(c.keys, key{name: name, rawcodes: codes})
	}
	return c, nil
}

func (c *Combo) String() string { return c.spec }

// Press records a key-down and reports whether it completed the combination.
// Completing the combination resets it so a held combo fires once.
func (c *Combo) Press(rawcode uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mark(rawcode, true)
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

// Release records a key-up.
func (c *Combo) Release(rawcode uint16) {
	c.mu.Lock()
	c.mark(rawcode, false)
	c.mu.Unlock()
}

func (c *Combo) mark(rawcode uint16, down bool) {
	for i := range c.keys {
		for _, rc := range c.keys[i].rawcodes {
			if rc == rawcode {
				c.keys[i].pressed = down
				break
			}
		}
	}
}

// parseHotkey converts "Ctrl+Alt+a" into normalized key names.
func parseHotkey(spec string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(spec), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// Windows virtual key codes. Modifiers list both the left and right variant.
var rawcodes = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":       {32},
	"enter":       {13},
	"return":      {13},
	"esc":         {27},
	"escape":      {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"del":         {46},
	"insert":      {45},
	"ins":         {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pgup":        {33},
	"pagedown":    {34},
	"pgdn":        {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44},
	"prtsc":       {44},
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		rawcodes[string(c)] = []uint16{uint16('A' + c - 'a')}
	}
	for d := '0'; d <= '9'; d++ {
		rawcodes[string(d)] = []uint16{uint16(d)}
	}
	for n := 1; n <= 24; n++ {
		rawcodes[fmt.Sprintf("f%d", n)] = []uint16{uint16(111 + n)} // VK_F1 = 112
	}
}

func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "win" || name == "super" {
		name = "cmd"
	}
	return rawcodes[name]
}
