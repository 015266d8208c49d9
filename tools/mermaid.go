/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/patmalib/patma/pat"
)

type MermaidOpts struct {
	// ShowConstants will result in leaf labels that are the JSON
	// representations of constant values.
	ShowConstants bool `json:"showConstants"`

	// BinderFill is the fill color for nodes that bind names
	// (variables and captures).
	BinderFill string `json:"binderFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given pattern tree.
func Mermaid(p pat.Pattern, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowConstants: true,
			BinderFill:    "#bcf2db",
		}
	}

	fmt.Fprintf(w, "graph TB\n")

	num := 0
	var node func(p pat.Pattern) (string, error)
	node = func(p pat.Pattern) (string, error) {
		num++
		nid := fmt.Sprintf("n%d", num)

		label := ""
		binder := false
		kids := make([]pat.Pattern, 0, 4)

		switch v := p.(type) {
		case *pat.Constant:
			label = "const"
			if opts.ShowConstants {
				bs, err := json.Marshal(v.Value)
				if err != nil {
					return "", err
				}
				label = strings.Replace(string(bs), `"`, `'`, -1)
			}
		case *pat.Variable:
			if v.Name == "_" {
				label = "_"
			} else {
				label = "?" + v.Name
				binder = true
			}
		case *pat.Alternatives:
			label = "or"
			kids = append(kids, v.Patterns...)
		case *pat.Annotated:
			label = "is " + v.Type.TypeName()
			kids = append(kids, v.Inner)
		case *pat.Sequence:
			label = fmt.Sprintf("seq %d", len(v.Elements))
			kids = append(kids, v.Elements...)
		case *pat.Mapping:
			label = "map"
			for _, e := range v.Entries {
				kids = append(kids, e.Pattern)
			}
		case *pat.Instance:
			label = "rec " + v.Type.TypeName()
			kids = append(kids, v.Pos...)
			for _, f := range v.Kw {
				kids = append(kids, f.Pattern)
			}
		case *pat.Capture:
			label = "as " + v.Name
			binder = true
			kids = append(kids, v.Inner)
		default:
			return "", fmt.Errorf("unknown pattern %T", p)
		}

		if binder {
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, label)
			if opts.BinderFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.BinderFill)
			}
		} else {
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, label)
		}

		for _, sub := range kids {
			to, err := node(sub)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(w, "  %s --> %s\n", nid, to)
		}

		return nid, nil
	}

	if _, err := node(p); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}
