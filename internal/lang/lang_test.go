package lang

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse runs the named strategy over src and fails the test on any error.
func parse(t *testing.T, language string, src string) (Strategy, []Declaration, []string, string) {
	t.Helper()
	strategy, ok := ForLanguage(language)
	require.True(t, ok, "no strategy for %s", language)

	tree, err := strategy.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })

	decls := strategy.Declarations(tree, []byte(src))
	imports := strategy.Imports(tree, []byte(src))
	fp := Fingerprint(tree, []byte(src))
	return strategy, decls, imports, fp
}

func declByName(decls []Declaration, name string) *Declaration {
	for i := range decls {
		if decls[i].Name == name {
			return &decls[i]
		}
	}
	return nil
}

func TestForPath(t *testing.T) {
	cases := []struct {
		path     string
		language string
		ok       bool
	}{
		{"src/app.py", "python", true},
		{"lib/index.js", "javascript", true},
		{"lib/index.mjs", "javascript", true},
		{"lib/index.cjs", "javascript", true},
		{"web/App.jsx", "javascript", true},
		{"api/server.ts", "typescript", true},
		{"web/App.tsx", "tsx", true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}
	for _, tc := range cases {
		language, ok := ForPath(tc.path)
		assert.Equal(t, tc.ok, ok, tc.path)
		assert.Equal(t, tc.language, language, tc.path)
	}
}

func TestExtensions_Sorted(t *testing.T) {
	exts := Extensions()
	require.NotEmpty(t, exts)
	assert.Contains(t, exts, ".py")
	assert.Contains(t, exts, ".tsx")
	assert.True(t, sort.StringsAreSorted(exts))
}

func TestRegistry_AllLanguagesPresent(t *testing.T) {
	for _, tag := range []string{"python", "javascript", "typescript", "tsx"} {
		s, ok := ForLanguage(tag)
		require.True(t, ok, tag)
		assert.Equal(t, tag, s.Name())
	}
}

// --- Python extraction ---

func TestPython_Declarations(t *testing.T) {
	src := `
MAX_RETRIES = 3
_cache = {}

def fetch(url, timeout=30):
    pass

def _helper():
    pass

class Client:
    def get(self, path):
        pass

    def _connect(self):
        pass
`
	_, decls, _, _ := parse(t, "python", src)

	fetch := declByName(decls, "fetch")
	require.NotNil(t, fetch)
	assert.Equal(t, KindFunction, fetch.Kind)
	assert.True(t, fetch.Public)
	require.Len(t, fetch.Params, 2)
	assert.Equal(t, "url", fetch.Params[0].Name)
	assert.Equal(t, "timeout", fetch.Params[1].Name)
	assert.True(t, fetch.Params[1].HasDefault)

	helper := declByName(decls, "_helper")
	require.NotNil(t, helper)
	assert.False(t, helper.Public)

	client := declByName(decls, "Client")
	require.NotNil(t, client)
	assert.Equal(t, KindClass, client.Kind)
	assert.True(t, client.Public)

	get := declByName(decls, "get")
	require.NotNil(t, get)
	assert.Equal(t, KindMethod, get.Kind)
	assert.True(t, get.Public)

	connect := declByName(decls, "_connect")
	require.NotNil(t, connect)
	assert.Equal(t, KindMethod, connect.Kind)
	assert.False(t, connect.Public)

	maxRetries := declByName(decls, "MAX_RETRIES")
	require.NotNil(t, maxRetries)
	assert.Equal(t, KindConstant, maxRetries.Kind)

	cache := declByName(decls, "_cache")
	require.NotNil(t, cache)
	assert.False(t, cache.Public)
}

func TestPython_TypedParamsAndReturn(t *testing.T) {
	src := `
def scale(value: float, factor: float = 2.0) -> float:
    return value * factor
`
	_, decls, _, _ := parse(t, "python", src)

	scale := declByName(decls, "scale")
	require.NotNil(t, scale)
	assert.Equal(t, "float", scale.ReturnType)
	require.Len(t, scale.Params, 2)
	assert.Equal(t, "value", scale.Params[0].Name)
	assert.Equal(t, "float", scale.Params[0].Type)
	assert.False(t, scale.Params[0].HasDefault)
	assert.Equal(t, "factor", scale.Params[1].Name)
	assert.True(t, scale.Params[1].HasDefault)
}

func TestPython_Imports(t *testing.T) {
	src := `
import os
import json as j
from collections import OrderedDict
from . import util
from ..pkg import helpers
`
	_, _, imports, _ := parse(t, "python", src)

	assert.Contains(t, imports, "os")
	assert.Contains(t, imports, "json")
	assert.Contains(t, imports, "collections")
	assert.Contains(t, imports, ".")
	assert.Contains(t, imports, "..pkg")
	assert.True(t, sort.StringsAreSorted(imports))
}

func TestPython_DecoratedDefinition(t *testing.T) {
	src := `
class Service:
    @property
    def name(self):
        return self._name
`
	_, decls, _, _ := parse(t, "python", src)

	name := declByName(decls, "name")
	require.NotNil(t, name)
	assert.Equal(t, KindMethod, name.Kind)
}

// --- JavaScript / TypeScript extraction ---

func TestJavaScript_Declarations(t *testing.T) {
	src := `
const MAX_SIZE = 100;
let counter = 0;

function render(tree, options) {}

class Widget {
  draw(ctx) {}
  _reset() {}
  #hidden() {}
}
`
	_, decls, _, _ := parse(t, "javascript", src)

	render := declByName(decls, "render")
	require.NotNil(t, render)
	assert.Equal(t, KindFunction, render.Kind)
	require.Len(t, render.Params, 2)

	widget := declByName(decls, "Widget")
	require.NotNil(t, widget)
	assert.Equal(t, KindClass, widget.Kind)

	draw := declByName(decls, "draw")
	require.NotNil(t, draw)
	assert.Equal(t, KindMethod, draw.Kind)
	assert.True(t, draw.Public)

	reset := declByName(decls, "_reset")
	require.NotNil(t, reset)
	assert.False(t, reset.Public)

	maxSize := declByName(decls, "MAX_SIZE")
	require.NotNil(t, maxSize)
	assert.Equal(t, KindConstant, maxSize.Kind)

	counter := declByName(decls, "counter")
	require.NotNil(t, counter)
	assert.Equal(t, KindVariable, counter.Kind)
}

func TestJavaScript_Imports(t *testing.T) {
	src := `
import fs from 'fs';
import { join } from "./util";
import "../styles.css";
`
	_, _, imports, _ := parse(t, "javascript", src)

	assert.Contains(t, imports, "fs")
	assert.Contains(t, imports, "./util")
	assert.Contains(t, imports, "../styles.css")
}

func TestTypeScript_Declarations(t *testing.T) {
	src := `
export interface Shape {
  area(): number;
}

export function describe(shape: Shape, label?: string): string {
  return label ?? "";
}

class Circle {
  constructor(private radius: number) {}
  area(): number { return Math.PI * this.radius ** 2; }
}
`
	_, decls, _, _ := parse(t, "typescript", src)

	shape := declByName(decls, "Shape")
	require.NotNil(t, shape)
	assert.Equal(t, KindInterface, shape.Kind)

	describe := declByName(decls, "describe")
	require.NotNil(t, describe)
	assert.Equal(t, "string", describe.ReturnType)
	require.Len(t, describe.Params, 2)
	assert.Equal(t, "shape", describe.Params[0].Name)
	assert.Equal(t, "Shape", describe.Params[0].Type)
	assert.Equal(t, "label", describe.Params[1].Name)
	assert.True(t, describe.Params[1].Optional)

	area := declByName(decls, "area")
	require.NotNil(t, area)
	assert.Equal(t, KindMethod, area.Kind)
	assert.Equal(t, "number", area.ReturnType)
}

func TestTypeScript_PrivateModifier(t *testing.T) {
	src := `
class Store {
  private load(): void {}
  protected sync(): void {}
  flush(): void {}
}
`
	_, decls, _, _ := parse(t, "typescript", src)

	load := declByName(decls, "load")
	require.NotNil(t, load)
	assert.False(t, load.Public)

	sync := declByName(decls, "sync")
	require.NotNil(t, sync)
	assert.False(t, sync.Public)

	flush := declByName(decls, "flush")
	require.NotNil(t, flush)
	assert.True(t, flush.Public)
}

func TestTSX_Parses(t *testing.T) {
	src := `
import React from 'react';

export function App({ title }: { title: string }) {
  return <h1>{title}</h1>;
}
`
	_, decls, imports, fp := parse(t, "tsx", src)

	require.NotNil(t, declByName(decls, "App"))
	assert.Contains(t, imports, "react")
	assert.True(t, IsASTFingerprint(fp))
}

func TestDeclarations_SortedByLineThenName(t *testing.T) {
	src := `
def beta():
    pass

def alpha():
    pass
`
	_, decls, _, _ := parse(t, "python", src)
	require.Len(t, decls, 2)
	assert.Equal(t, "beta", decls[0].Name)
	assert.Equal(t, "alpha", decls[1].Name)
	assert.Less(t, decls[0].Line, decls[1].Line)
}
