// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

// Channel is a FIFO queue of words.
type Channel struct {
	values []int64
}

func (ch *Channel) Push(values ...int64) {
	ch.values = append(ch.values, values...)
}

func (ch *Channel) Pop() (int64, bool) {
	if len(ch.values) == 0 {
		return 0, false
	}

	value := ch.values[0]
	ch.values = ch.values[1:]

	if len(ch.values) == 0 {
		ch.values = nil
	}

	return value, true
}

func (ch *Channel) Peek() (int64, bool) {
	if len(ch.values) == 0 {
		return 0, false
	}
	return ch.values[0], true
}

func (ch *Channel) Len() int {
	return len(ch.values)
}

// Values returns a copy of the queued words, front first.
func (ch *Channel) Values() []int64 {
	result := make([]int64, len(ch.values))
	copy(result, ch.values)
	return result
}

// Drain empties the queue and returns what it held.
func (ch *Channel) Drain() []int64 {
	result := ch.values
	ch.values = nil
	if result == nil {
		result = []int64{}
	}
	return result
}

func (ch *Channel) Clear() {
	ch.values = nil
}
