package meshcollide

import "fmt"

// SortFaces orders the candidates by ascending hit distance using DefaultSortThreshold
func (d *Descriptor) SortFaces() {
	d.SortFacesThreshold(DefaultSortThreshold)
}

// SortFacesThreshold orders the candidates by ascending hit distance. The three
// candidate arrays are permuted together.
//
// Partitions larger than threshold are split by an iterative quicksort on a fixed
// stack, a selection pass over the first 2*threshold entries moves the minimum to
// the front, and an insertion pass finishes the nearly sorted array.
func (d *Descriptor) SortFacesThreshold(threshold int) {
	if threshold < 1 {
		threshold = 1
	}
	count := d.faceCount
	dist := d.hitDistance[:count]

	if count >= threshold {
		var stack [MaxCollidingFaces][2]int
		stack[0] = [2]int{0, count - 1}
		top := 1

		for top > 0 {
			top--
			lo, hi := stack[top][0], stack[top][1]
			if hi-lo <= threshold {
				continue
			}

			i, j := lo, hi
			pivot := dist[(lo+hi)>>1]
			for i <= j {
				for dist[i] < pivot {
					i++
				}
				for dist[j] > pivot {
					j--
				}
				if i <= j {
					d.swap(i, j)
					i++
					j--
				}
			}

			if top+2 > len(stack) {
				panic(fmt.Sprintf("meshcollide: sort stack overflow with %d candidates", count))
			}
			if i < hi {
				stack[top] = [2]int{i, hi}
				top++
			}
			if lo < j {
				stack[top] = [2]int{lo, j}
				top++
			}
		}
	}

	window := min(2*threshold, count)
	for i := 1; i < window; i++ {
		if dist[i] < dist[0] {
			d.swap(i, 0)
		}
	}

	for i := 1; i < count; i++ {
		start, indices, distance := d.faceIndexStart[i], d.faceIndexCount[i], dist[i]

		j := i
		for ; j > 0 && distance < dist[j-1]; j-- {
			d.faceIndexStart[j] = d.faceIndexStart[j-1]
			d.faceIndexCount[j] = d.faceIndexCount[j-1]
			dist[j] = dist[j-1]
		}
		d.faceIndexStart[j] = start
		d.faceIndexCount[j] = indices
		dist[j] = distance
	}

	if debugAsserts {
		for i := 0; i+1 < count; i++ {
			if dist[i] > dist[i+1] {
				panic(fmt.Sprintf("meshcollide: candidates out of order at %d: %v > %v", i, dist[i], dist[i+1]))
			}
		}
	}
}

func (d *Descriptor) swap(i, j int) {
	d.hitDistance[i], d.hitDistance[j] = d.hitDistance[j], d.hitDistance[i]
	d.faceIndexStart[i], d.faceIndexStart[j] = d.faceIndexStart[j], d.faceIndexStart[i]
	d.faceIndexCount[i], d.faceIndexCount[j] = d.faceIndexCount[j], d.faceIndexCount[i]
}
