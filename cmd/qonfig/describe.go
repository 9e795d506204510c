/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voedger/qonfig/pkg/qdef"
)

func newDescribeCmd(params *qonfigParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [toolkit...]",
		Short: "print compiled toolkits",
		Long:  "Prints compiled toolkits of workspace. Toolkits are referenced as \"Name vMajor.Minor\", all toolkits are printed if none is referenced.",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(params)
			if err != nil {
				return err
			}
			tt := w.Toolkits()
			if len(args) > 0 {
				tt = make([]qdef.IToolkit, 0, len(args))
				for _, arg := range args {
					ref, err := qdef.ParseToolkitRef(arg)
					if err != nil {
						return err
					}
					tk, err := w.Toolkit(ref)
					if err != nil {
						return err
					}
					tt = append(tt, tk)
				}
			}
			for i, tk := range tt {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				describeToolkit(cmd.OutOrStdout(), tk)
			}
			return nil
		},
	}
	return cmd
}

// Prints toolkit declarations in declaration order
func describeToolkit(out io.Writer, tk qdef.IToolkit) {
	d := describer{out: out, tk: tk}
	d.line(0, "toolkit %v", tk.Ref())
	if tk.Description() != "" {
		d.line(1, "description %q", tk.Description())
	}
	for _, alias := range tk.DependencyAliases() {
		d.line(1, "uses %s = %v", alias, tk.Dependency(alias).Ref())
	}
	for _, vt := range tk.DeclaredValueTypes() {
		d.line(1, "%v %s%s", vt.Kind(), vt.Name(), valueTypeDetails(vt))
	}
	if roots := tk.Roots(); len(roots) > 0 {
		names := make([]string, 0, len(roots))
		for _, r := range roots {
			names = append(names, d.ref(r))
		}
		d.line(1, "root %s", strings.Join(names, ", "))
	}
	for _, t := range tk.DeclaredTypes() {
		d.typ(t)
	}
	for _, r := range tk.DeclaredAutoInheritance() {
		d.line(1, "auto-inherit %s", d.refs(r.AddOns()))
		for _, tg := range r.Targets() {
			s := "target"
			if tg.Type != nil {
				s += " type " + d.ref(tg.Type)
			}
			if tg.Role != nil {
				s += " role " + d.ref(tg.Role.Owner()) + qdef.MemberSeparator + tg.Role.Name()
			}
			d.line(2, "%s", s)
		}
	}
}

type describer struct {
	out io.Writer
	tk  qdef.IToolkit
}

func (d *describer) line(depth int, format string, args ...any) {
	fmt.Fprintf(d.out, strings.Repeat(indent, depth)+format+"\n", args...)
}

// Returns type name, prefixed by alias if type belongs to dependency
func (d *describer) ref(t qdef.IElementOrAddOn) string {
	if t.Toolkit() == d.tk {
		return t.Name()
	}
	for _, alias := range d.tk.DependencyAliases() {
		if d.tk.Dependency(alias) == t.Toolkit() {
			return alias + qdef.AliasSeparator + t.Name()
		}
	}
	return t.QualifiedName()
}

func (d *describer) refs(tt []qdef.IAddOn) string {
	names := make([]string, 0, len(tt))
	for _, t := range tt {
		names = append(names, d.ref(t))
	}
	return strings.Join(names, ", ")
}

func (d *describer) typ(t qdef.IElementOrAddOn) {
	b := strings.Builder{}
	if t.Abstract() {
		b.WriteString("abstract ")
	}
	switch t.Kind() {
	case qdef.TypeKind_ElementDef:
		e := t.(qdef.IElementDef)
		if e.Promise() {
			b.WriteString("promise ")
		}
		fmt.Fprintf(&b, "%v %s", t.Kind(), t.Name())
		if s := e.Super(); s != nil {
			fmt.Fprintf(&b, " extends %s", d.ref(s))
		}
	case qdef.TypeKind_AddOn:
		fmt.Fprintf(&b, "%v %s", t.Kind(), t.Name())
		if r := t.(qdef.IAddOn).Requires(); r != nil {
			fmt.Fprintf(&b, " requires %s", d.ref(r))
		}
	}
	if inh := t.Inherits(); len(inh) > 0 {
		fmt.Fprintf(&b, " inherits %s", d.refs(inh))
	}
	d.line(1, "%s", b.String())

	if t.Description() != "" {
		d.line(2, "description %q", t.Description())
	}
	for _, a := range t.Attributes() {
		if a.Owner() != t {
			continue
		}
		if a.IsDeclared() {
			d.line(2, "attribute %s: %s%s", a.Name(), a.Type().Name(), valueDetails(a))
		} else {
			d.line(2, "modify attribute %s%s%s: %s%s", d.ref(a.Declared().Owner()), qdef.MemberSeparator, a.Name(), a.Type().Name(), valueDetails(a))
		}
	}
	if v := t.Value(); v != nil && v.Owner() == t {
		if v.IsDeclared() {
			d.line(2, "value: %s%s", v.Type().Name(), valueDetails(v))
		} else {
			d.line(2, "modify value: %s%s", v.Type().Name(), valueDetails(v))
		}
	}
	d.children(t, t.Children(), "")
	d.children(t, t.MetaChildren(), "metadata ")
}

func (d *describer) children(t qdef.IElementOrAddOn, roles []qdef.IChildDef, prefix string) {
	for _, c := range roles {
		if c.Owner() != t {
			continue
		}
		details := fmt.Sprintf(" %v..%v", c.Min(), c.Max())
		if inh := c.Inherits(); len(inh) > 0 {
			details += " inherits " + d.refs(inh)
		}
		if req := c.Requires(); len(req) > 0 {
			details += " requires " + d.refs(req)
		}
		if c.IsDeclared() {
			d.line(2, "%schild-def %s: %s%s", prefix, c.Name(), d.ref(c.Type()), details)
		} else {
			d.line(2, "%smodify child-def %s%s%s: %s%s", prefix, d.ref(c.Declared().Owner()), qdef.MemberSeparator, c.Name(), d.ref(c.Type()), details)
		}
	}
}

func valueDetails(v qdef.IValueDef) string {
	s := " " + v.Specify().String()
	if text, ok := v.DefaultText(); ok {
		s += fmt.Sprintf(" default %q", text)
	}
	return s
}

func valueTypeDetails(vt qdef.IValueType) string {
	switch t := vt.(type) {
	case qdef.IPatternType:
		return fmt.Sprintf(" `%s`", t.Pattern().String())
	case qdef.ILiteralType:
		return fmt.Sprintf(" %q", t.Literal())
	case qdef.IOneOfType:
		names := make([]string, 0, len(t.Alternatives()))
		for _, a := range t.Alternatives() {
			names = append(names, a.Name())
		}
		return " (" + strings.Join(names, ", ") + ")"
	case qdef.IExplicitType:
		return fmt.Sprintf(" %s prefix %q suffix %q", t.Wrapped().Name(), t.Prefix(), t.Suffix())
	}
	return ""
}
