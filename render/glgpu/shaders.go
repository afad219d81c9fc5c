package glgpu

// Combined GLSL sources. Each holds a vertex and a fragment stage.

const axesSource = `#shader vertex
#version 330 core
layout(location = 0) in vec3 pos;
layout(location = 1) in vec3 color;
uniform mat4 mvp;
out vec3 vColor;
void main() {
	gl_Position = mvp * vec4(pos, 1.0);
	vColor = color;
}

#shader fragment
#version 330 core
in vec3 vColor;
out vec4 fragColor;
void main() {
	fragColor = vec4(vColor, 1.0);
}
`

const volumeSource = `#shader vertex
#version 330 core
layout(location = 0) in vec3 pos;
layout(location = 1) in float density;
layout(location = 2) in vec3 color;
uniform mat4 mvp;
out vec3 vColor;
out float vDensity;
void main() {
	gl_Position = mvp * vec4(pos, 1.0);
	vColor = color;
	vDensity = density;
}

#shader fragment
#version 330 core
in vec3 vColor;
in float vDensity;
uniform float gain;
out vec4 fragColor;
void main() {
	fragColor = vec4(vColor * vDensity * gain, 1.0);
}
`

// compositeSource draws a single screen covering triangle.
const compositeSource = `#shader vertex
#version 330 core
out vec2 uv;
void main() {
	vec2 p = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
	uv = p;
	gl_Position = vec4(p*2.0 - 1.0, 0.0, 1.0);
}

#shader fragment
#version 330 core
in vec2 uv;
uniform sampler2D solid;
uniform sampler2D cloud;
out vec4 fragColor;
void main() {
	vec3 s = texture(solid, uv).rgb;
	vec3 c = texture(cloud, uv).rgb;
	fragColor = vec4(min(s + 1.0 - exp(-c), 1.0), 1.0);
}
`
