/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Point{10, 20}) || !r.Contains(Point{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.Width != 90 || in.Height != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestRectAtAndPointMath(t *testing.T) {
	r := RectAt(Point{X: 1, Y: 2}, Size{Width: 3, Height: 4})
	if r != R(1, 2, 3, 4) || r.Size() != (Size{Width: 3, Height: 4}) {
		t.Fatalf("unexpected rect: %+v", r)
	}
	p := Point{X: 10, Y: 20}
	if d := p.Sub(Point{X: 4, Y: 5}); d != (Point{X: 6, Y: 15}) {
		t.Fatalf("unexpected sub: %+v", d)
	}
	if got := p.Add(Point{X: -10, Y: 5}); got != (Point{X: 0, Y: 25}) {
		t.Fatalf("unexpected add: %+v", got)
	}
}

func TestSizeClampMin(t *testing.T) {
	got := Size{Width: 5, Height: 40}.ClampMin(20)
	if got.Width != 20 || got.Height != 40 {
		t.Fatalf("unexpected clamp: %+v", got)
	}
}

func TestFloatRound(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{1.23456, 2, 1.23},
		{2.5, 0, 3},
		{1.005, -1, 1.005},
	}
	for _, tc := range cases {
		if got := FloatRound(tc.v, tc.places); got != tc.want {
			t.Fatalf("FloatRound(%v, %d) = %v, want %v", tc.v, tc.places, got, tc.want)
		}
	}
}
